// Package audit holds the actor stamps shared by every persisted aggregate.
package audit

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer     Role = "customer"
	RolePhotographer Role = "photographer"
	RoleAdmin        Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RolePhotographer, RoleAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Info is embedded into entities. DeletedAt doubles as gorm's soft delete
// marker, so default queries skip deactivated rows.
type Info struct {
	CreatedBy  *int64         `gorm:"column:created_by" json:"created_by,omitempty"`
	UpdatedBy  *int64         `gorm:"column:updated_by" json:"updated_by,omitempty"`
	DeletedBy  *int64         `gorm:"column:deleted_by" json:"deleted_by,omitempty"`
	RestoredBy *int64         `gorm:"column:restored_by" json:"restored_by,omitempty"`
	CreatedAt  time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
	RestoredAt *time.Time     `gorm:"column:restored_at" json:"restored_at,omitempty"`
}

func (i *Info) StampCreate(actorID int64, now time.Time) {
	i.CreatedBy = ptr(actorID)
	i.UpdatedBy = ptr(actorID)
	i.CreatedAt = now
	i.UpdatedAt = now
}

func (i *Info) StampUpdate(actorID int64, now time.Time) {
	i.UpdatedBy = ptr(actorID)
	i.UpdatedAt = now
}

func (i *Info) MarkDeleted(actorID int64, now time.Time) {
	i.DeletedBy = ptr(actorID)
	i.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
	i.StampUpdate(actorID, now)
}

func (i *Info) MarkRestored(actorID int64, now time.Time) {
	i.RestoredBy = ptr(actorID)
	i.RestoredAt = &now
	i.DeletedAt = gorm.DeletedAt{}
	i.StampUpdate(actorID, now)
}

func (i *Info) IsDeleted() bool { return i.DeletedAt.Valid }

func ptr(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
