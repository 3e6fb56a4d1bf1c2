package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel is embedded by mutable configuration rows. Usage events do not use it:
// they are immutable and keyed by uuid.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func GenerateUUID() string {
	return uuid.New().String()
}
