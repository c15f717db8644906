package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/enums"
)

// Staff is a member of the staff directory.
type Staff struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Email        string          `gorm:"column:email;not null"`
	Phone        string          `gorm:"column:phone;not null;uniqueIndex:ux_staff_phone"`
	Role         enums.StaffRole `gorm:"column:role;not null"`
	Skills       []string        `gorm:"column:skills;type:jsonb;serializer:json"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Staff) TableName() string {
	return "staff"
}

func (s *Staff) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
