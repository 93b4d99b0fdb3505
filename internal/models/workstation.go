package models

import "time"

// Workstation (puesto de trabajo) belongs to one location and is occupied by
// at most one staff member.
type Workstation struct {
	ID uint `gorm:"primaryKey" json:"id"`

	LocationID uint     `gorm:"not null;uniqueIndex:idx_workstation_name_location" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Name string `gorm:"size:100;not null;uniqueIndex:idx_workstation_name_location" json:"name"`

	StaffID *uint `gorm:"uniqueIndex" json:"staff_id"`
	Active  bool  `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Workstation) IsFree() bool {
	return w.StaffID == nil
}
