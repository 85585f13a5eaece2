package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/gymsaathiide/gymaccess/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects. Downstream consumers (notification sender, dashboard
// aggregator) subscribe to these; this service only publishes.
const (
	MemberCheckedIn   = "attendance.checked_in"
	MemberCheckedOut  = "attendance.checked_out"
	SessionAutoClosed = "attendance.auto_closed"
	QRSecretRotated   = "qr.secret_rotated"
	QREnabledChanged  = "qr.enabled_changed"
)

type CheckedInEvent struct {
	SessionID int64     `json:"session_id"`
	GymID     int64     `json:"gym_id"`
	MemberID  int64     `json:"member_id"`
	CheckInAt time.Time `json:"check_in_at"`
	Origin    string    `json:"origin"`
}

type CheckedOutEvent struct {
	SessionID  int64     `json:"session_id"`
	GymID      int64     `json:"gym_id"`
	MemberID   int64     `json:"member_id"`
	CheckInAt  time.Time `json:"check_in_at"`
	CheckOutAt time.Time `json:"check_out_at"`
	Reason     string    `json:"reason"`
}

type QRSecretRotatedEvent struct {
	GymID     int64     `json:"gym_id"`
	RotatedAt time.Time `json:"rotated_at"`
}

type QREnabledChangedEvent struct {
	GymID   int64 `json:"gym_id"`
	Enabled bool  `json:"enabled"`
}
