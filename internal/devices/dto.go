package devices

import (
	"github.com/google/uuid"

	"github.com/alisproject/alis-backend/pkg/db/models"
)

// CreateDeviceInput carries the caller-settable fields for a new device. Both
// secrets are system-generated, so only the display name is accepted.
type CreateDeviceInput struct {
	Name string
}

// UpdateDeviceInput is a partial update. A non-nil UUIDToken is rejected
// unless it matches the stored token; the token never changes after creation.
type UpdateDeviceInput struct {
	Name      *string
	UUIDToken *uuid.UUID
}

// DeviceDTO is the external representation of a device. The client secret is
// included: the caller pairing a device needs it exactly once.
type DeviceDTO struct {
	ID           uuid.UUID `json:"id"`
	UUIDToken    uuid.UUID `json:"uuid_token"`
	ClientSecret string    `json:"client_secret"`
	Name         string    `json:"name,omitempty"`
}

// FromModel maps a persisted device onto its DTO.
func FromModel(device *models.ALISDevice) DeviceDTO {
	return DeviceDTO{
		ID:           device.ID,
		UUIDToken:    device.UUIDToken,
		ClientSecret: device.ClientSecret,
		Name:         device.Name,
	}
}
