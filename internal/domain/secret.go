package domain

import (
	"encoding/json"
	"time"
)

// QRPayloadType is the discriminator inside every scanned payload. Any
// other value means the QR was not minted by this system.
const QRPayloadType = "gym_attendance"

// GymSecret is the rotating shared secret authenticating a gym's QR
// poster. One row per gym; the secret is replaced wholesale on rotation.
type GymSecret struct {
	GymID         int64      `json:"gym_id"`
	Secret        string     `json:"-"`
	IsEnabled     bool       `json:"is_enabled"`
	LastRotatedAt *time.Time `json:"last_rotated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// QRPayload is the blob rendered as the scannable code.
type QRPayload struct {
	Type   string `json:"type"`
	GymID  int64  `json:"gym_id"`
	Secret string `json:"secret"`
}

func (p QRPayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// ParseQRPayload decodes a scanned payload. Every malformed shape comes
// back as ErrInvalidQR; callers must not learn which part was wrong.
func ParseQRPayload(raw string) (*QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, ErrInvalidQR
	}
	if p.Type != QRPayloadType || p.GymID <= 0 || p.Secret == "" {
		return nil, ErrInvalidQR
	}
	return &p, nil
}

// QRConfig is the admin-facing view of a gym's QR setup.
type QRConfig struct {
	GymID         int64      `json:"gym_id"`
	IsEnabled     bool       `json:"is_enabled"`
	QRPayload     string     `json:"qr_payload"`
	LastRotatedAt *time.Time `json:"last_rotated_at,omitempty"`
}
