package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Bio       string    `json:"bio" gorm:"type:varchar(1024);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserInput is the writable part of a user, used for both insert and update.
type UserInput struct {
	Name string `json:"name" validate:"required,max=128"`
	Bio  string `json:"bio" validate:"required,max=1024"`
}

// InsertResult is returned by an insert and carries the id of the new record.
type InsertResult struct {
	ID uuid.UUID `json:"id"`
}
