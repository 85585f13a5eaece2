package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/gymsaathiide/gymaccess/internal/domain"
	"github.com/gymsaathiide/gymaccess/internal/repository"
	"github.com/gymsaathiide/gymaccess/pkg/config"
	"github.com/gymsaathiide/gymaccess/pkg/events"
	"github.com/gymsaathiide/gymaccess/pkg/logger"
)

// QRConfigService owns the lifecycle of per-gym QR secrets: lazy creation,
// rotation, and the pause switch.
type QRConfigService interface {
	GetOrCreateConfig(ctx context.Context, gymID int64) (*domain.QRConfig, error)
	RotateSecret(ctx context.Context, gymID int64) (*domain.QRConfig, error)
	SetEnabled(ctx context.Context, gymID int64, enabled bool) (*domain.QRConfig, error)
}

type qrConfigService struct {
	secrets repository.SecretRepository
	gyms    repository.GymRepository
	bus     events.Publisher
	cfg     *config.Config
}

func NewQRConfigService(
	secrets repository.SecretRepository,
	gyms repository.GymRepository,
	bus events.Publisher,
	cfg *config.Config,
) QRConfigService {
	return &qrConfigService{
		secrets: secrets,
		gyms:    gyms,
		bus:     bus,
		cfg:     cfg,
	}
}

const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// generateSecret draws n characters uniformly from the alphanumeric
// alphabet. 32 characters over 62 symbols is ~190 bits of entropy.
func generateSecret(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate secret: %w", err)
		}
		out[i] = secretAlphabet[idx.Int64()]
	}
	return string(out), nil
}

// secretsEqual compares secrets in time independent of where a mismatch
// occurs. Length leaks are fine: the length is fixed and public.
func secretsEqual(stored, provided string) bool {
	if len(stored) != len(provided) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) == 1
}

func (s *qrConfigService) GetOrCreateConfig(ctx context.Context, gymID int64) (*domain.QRConfig, error) {
	secret, err := s.ensureSecret(ctx, gymID)
	if err != nil {
		return nil, err
	}
	return s.toConfig(secret)
}

func (s *qrConfigService) RotateSecret(ctx context.Context, gymID int64) (*domain.QRConfig, error) {
	if _, err := s.ensureSecret(ctx, gymID); err != nil {
		return nil, err
	}

	newSecret, err := generateSecret(s.cfg.Attendance.SecretLength)
	if err != nil {
		return nil, err
	}
	secret, err := s.secrets.Rotate(ctx, gymID, newSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate gym secret: %w", err)
	}
	if secret == nil {
		return nil, domain.ErrQRNotConfigured
	}

	event := events.QRSecretRotatedEvent{GymID: gymID, RotatedAt: time.Now()}
	if err := s.bus.Publish(ctx, events.QRSecretRotated, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish secret rotated event", "error", err, "gym_id", gymID)
	}

	return s.toConfig(secret)
}

func (s *qrConfigService) SetEnabled(ctx context.Context, gymID int64, enabled bool) (*domain.QRConfig, error) {
	if _, err := s.ensureSecret(ctx, gymID); err != nil {
		return nil, err
	}

	secret, err := s.secrets.SetEnabled(ctx, gymID, enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle gym QR: %w", err)
	}
	if secret == nil {
		return nil, domain.ErrQRNotConfigured
	}

	event := events.QREnabledChangedEvent{GymID: gymID, Enabled: enabled}
	if err := s.bus.Publish(ctx, events.QREnabledChanged, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish QR toggled event", "error", err, "gym_id", gymID)
	}

	return s.toConfig(secret)
}

// ensureSecret verifies the gym exists and lazily creates its secret row.
func (s *qrConfigService) ensureSecret(ctx context.Context, gymID int64) (*domain.GymSecret, error) {
	gym, err := s.gyms.GetByID(ctx, gymID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up gym: %w", err)
	}
	if gym == nil {
		return nil, domain.ErrGymNotFound
	}

	candidate, err := generateSecret(s.cfg.Attendance.SecretLength)
	if err != nil {
		return nil, err
	}
	secret, err := s.secrets.GetOrCreate(ctx, gymID, candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to load gym secret: %w", err)
	}
	return secret, nil
}

func (s *qrConfigService) toConfig(secret *domain.GymSecret) (*domain.QRConfig, error) {
	payload, err := domain.QRPayload{
		Type:   domain.QRPayloadType,
		GymID:  secret.GymID,
		Secret: secret.Secret,
	}.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR payload: %w", err)
	}

	return &domain.QRConfig{
		GymID:         secret.GymID,
		IsEnabled:     secret.IsEnabled,
		QRPayload:     payload,
		LastRotatedAt: secret.LastRotatedAt,
	}, nil
}
