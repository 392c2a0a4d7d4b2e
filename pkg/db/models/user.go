package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity. Username is always the
// lowercase form of ChosenUsername; the pair is recomputed together whenever a
// caller sets either. Password holds the argon2id hash, never plaintext.
type User struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username         string    `gorm:"column:username;type:text;not null"`
	ChosenUsername   string    `gorm:"column:chosen_username;type:text;not null"`
	FullName         string    `gorm:"column:full_name;type:text"`
	EmailAddress     string    `gorm:"column:email_address;type:text;not null;uniqueIndex:uq_users_email_address"`
	Password         string    `gorm:"column:password;not null"`
	VerificationCode string    `gorm:"column:verification_code;not null"`
	IsVerified       bool      `gorm:"column:is_verified;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// BeforeCreate assigns the primary key when the caller left it zero, keeping
// inserts portable across drivers without a server-side uuid default.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
