package models

import "time"

// Staff (peluquero) provides services. An inactive staff member holds no
// workstation.
type Staff struct {
	ID uint `gorm:"primaryKey" json:"id"`

	PersonID uint   `gorm:"not null;uniqueIndex" json:"person_id"`
	Person   Person `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"person"`

	LocationID uint     `gorm:"not null;index" json:"location_id"`
	Location   Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	WorkstationID *uint `gorm:"uniqueIndex" json:"workstation_id"`
	Active        bool  `gorm:"not null" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HoldsWorkstation reports whether the staff member currently occupies id.
func (s *Staff) HoldsWorkstation(id uint) bool {
	return s.WorkstationID != nil && *s.WorkstationID == id
}
