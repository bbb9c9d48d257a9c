package catalog

import (
	"photosession/internal/domain/audit"
	"photosession/internal/pkg/money"
)

// Package is a fixed-price session bundle.
type Package struct {
	ID              int64        `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"size:255;not null" json:"name"`
	Description     string       `json:"description,omitempty"`
	Price           money.Amount `gorm:"not null" json:"price"`
	DurationMinutes int          `gorm:"not null" json:"duration_minutes"`
	IsActive        bool         `gorm:"not null" json:"is_active"`

	audit.Info `gorm:"embedded"`
}

func (Package) TableName() string { return "packages" }

// Service is an a-la-carte item priced per unit.
type Service struct {
	ID              int64        `gorm:"primaryKey" json:"id"`
	Name            string       `gorm:"size:255;not null" json:"name"`
	PricePerUnit    money.Amount `gorm:"not null" json:"price_per_unit"`
	DurationMinutes *int         `json:"duration_minutes,omitempty"`
	IsActive        bool         `gorm:"not null" json:"is_active"`

	audit.Info `gorm:"embedded"`
}

func (Service) TableName() string { return "services" }
