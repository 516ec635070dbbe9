package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopflows/shopflows-api/internal/config"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
)

// DeviceService authenticates kiosk terminals by PIN. Registered devices
// carry their own PIN; deployments without any registration fall back to the
// environment-configured kiosk PIN. There is deliberately no lockout or
// rate limit here; the product has not specified one.
type DeviceService struct {
	db    *database.DB
	kiosk config.KioskConfig
}

func NewDeviceService(db *database.DB, kiosk config.KioskConfig) *DeviceService {
	return &DeviceService{db: db, kiosk: kiosk}
}

// Authenticate checks the entered PIN and returns a shop_user session scoped
// to the device's organization. The comparison is plain equality; the PIN is
// a terminal unlock code, not a password.
func (s *DeviceService) Authenticate(ctx context.Context, pin, deviceID string) (models.Session, error) {
	if deviceID != "" {
		return s.authenticateDevice(ctx, pin, deviceID)
	}

	if s.kiosk.PIN == "" {
		return models.Session{}, ErrPINNotConfigured
	}
	if pin != s.kiosk.PIN {
		return models.Session{}, ErrBadPIN
	}

	return models.Session{
		IsAuthenticated: true,
		OrgID:           s.kiosk.OrgID,
		Role:            models.RoleShopUser,
		DeviceName:      s.kiosk.DeviceName,
	}, nil
}

func (s *DeviceService) authenticateDevice(ctx context.Context, pin, deviceID string) (models.Session, error) {
	id, err := uuid.Parse(deviceID)
	if err != nil {
		return models.Session{}, ErrBadPIN
	}

	var device models.Device
	err = s.db.Pool.QueryRow(ctx, `
		SELECT id, org_id, name, pin, created_at FROM devices WHERE id = $1
	`, id).Scan(&device.ID, &device.OrgID, &device.Name, &device.PIN, &device.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrBadPIN
		}
		return models.Session{}, fmt.Errorf("device lookup failed: %w", err)
	}

	if pin != device.PIN {
		return models.Session{}, ErrBadPIN
	}

	return device.Session(), nil
}

// Register creates a device row for an organization. Part of the richer
// device-registration flow; PIN login on a registered device yields sessions
// that identify the terminal.
func (s *DeviceService) Register(ctx context.Context, orgID uuid.UUID, name, pin string) (*models.Device, error) {
	var device models.Device
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO devices (org_id, name, pin)
		VALUES ($1, $2, $3)
		RETURNING id, org_id, name, pin, created_at
	`, orgID, name, pin).Scan(&device.ID, &device.OrgID, &device.Name, &device.PIN, &device.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return &device, nil
}
