package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ALISDevice is a pairable device identity. UUIDToken is assigned exactly once
// at creation; ClientSecret may be regenerated on demand.
type ALISDevice struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UUIDToken    uuid.UUID `gorm:"column:uuid_token;type:uuid;not null;uniqueIndex:uq_alis_devices_uuid_token"`
	ClientSecret string    `gorm:"column:client_secret;not null"`
	Name         string    `gorm:"column:name;type:text"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ALISDevice) TableName() string { return "alis_devices" }

func (d *ALISDevice) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
