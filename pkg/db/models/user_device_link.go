package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alisproject/alis-backend/pkg/enums"
)

// UserDeviceLink associates one user with one ALIS device at a privilege
// level. It is a pure relation record: deleting a link deletes neither
// endpoint. Privilege is written once at creation and never mutated.
type UserDeviceLink struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_user_device_links_pair"`
	ALISDeviceID    uuid.UUID       `gorm:"column:alis_device_id;type:uuid;not null;uniqueIndex:uq_user_device_links_pair"`
	Privilege       enums.Privilege `gorm:"column:privilege;type:text;not null;default:limited"`
	GrantedByUserID *uuid.UUID      `gorm:"column:granted_by_user_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserDeviceLink) TableName() string { return "user_device_links" }

func (l *UserDeviceLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Privilege == "" {
		l.Privilege = enums.PrivilegeLimited
	}
	if !l.Privilege.IsValid() {
		return fmt.Errorf("invalid privilege %q", l.Privilege)
	}
	return nil
}
