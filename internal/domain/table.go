package domain

import "time"

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TableReserved  TableStatus = "RESERVED"
	TableCleaning  TableStatus = "CLEANING"
)

func (s TableStatus) IsValid() bool {
	switch s {
	case TableAvailable, TableOccupied, TableReserved, TableCleaning:
		return true
	}
	return false
}

// Table is a physical dining table. OCCUPIED is derived from having at least
// one non-terminal order; staff never set it directly. A table referenced by
// historical orders is archived, never deleted.
type Table struct {
	ID             string      `json:"id" gorm:"primaryKey;type:char(36)"`
	Number         int         `json:"number" gorm:"uniqueIndex;not null"`
	Capacity       int         `json:"capacity" gorm:"not null"`
	Location       string      `json:"location" gorm:"size:64"`
	Status         TableStatus `json:"status" gorm:"size:16;not null;index"`
	QRCode         *string     `json:"qrCode,omitempty" gorm:"size:255"`
	ReservationTag *string     `json:"reservationTag,omitempty" gorm:"size:64"`
	CreatedAt      time.Time   `json:"createdAt" gorm:"autoCreateTime"`
	ArchivedAt     *time.Time  `json:"archivedAt,omitempty"`
}
