package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a registered kiosk terminal. PIN login on a device identifies
// the physical terminal, not a person.
type Device struct {
	ID        uuid.UUID `json:"id"`
	OrgID     uuid.UUID `json:"org_id"`
	Name      string    `json:"name"`
	PIN       string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *Device) Session() Session {
	return Session{
		IsAuthenticated: true,
		OrgID:           d.OrgID.String(),
		Role:            RoleShopUser,
		DeviceID:        d.ID.String(),
		DeviceName:      d.Name,
	}
}
