package main

import (
	"time"

	"gorm.io/datatypes"
)

// SheetRow is one row of a named sheet. Rows of a sheet are ordered by ID,
// which is the order they were appended in. The first row of a sheet is its
// header.
type SheetRow struct {
	ID        uint           `gorm:"primarykey"`
	Sheet     string         `gorm:"index;not null"`
	Cells     datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
}

// GuestbookEntry represents a message left on the guestbook
type GuestbookEntry struct {
	ID           string
	Name         string
	Message      string
	PasswordHash string
	CreatedAt    time.Time

	rowID uint
}

// AttendanceRecord represents one RSVP submission
type AttendanceRecord struct {
	Name         string
	Side         string
	Count        int
	Meal         string
	RegisteredAt time.Time
}
