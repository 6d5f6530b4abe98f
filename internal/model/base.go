package model

import (
	"time"
)

// GORM manages CreatedAt and UpdatedAt.
// CreatedBy and UpdatedBy are nullable audit columns. Requests carry no
// authenticated actor, so nothing writes them and they stay NULL.
type BaseEntity struct {
	CreatedAt time.Time `gorm:"column:created_at;not null"` // managed by GORM
	UpdatedAt time.Time `gorm:"column:updated_at;not null"` // managed by GORM
	CreatedBy *int64    `gorm:"column:created_by"`
	UpdatedBy *int64    `gorm:"column:updated_by"`
}
