package store

import "time"

// OfferRecord is the stored form of a best offer.
type OfferRecord struct {
	ID          string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Destination string    `json:"destination" gorm:"type:varchar(128)"`
	Discount    int       `json:"discount"`
	ImageURL    string    `json:"image_url,omitempty" gorm:"type:text"`
	StoredAt    time.Time `json:"stored_at"`
}

// TableName returns the database table name for OfferRecord.
func (OfferRecord) TableName() string { return "offers" }

// StoreID implements Entity.
func (r OfferRecord) StoreID() string { return r.ID }

// PartnerRecord is the stored form of a loyalty partner.
type PartnerRecord struct {
	ID       string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(255);not null"`
	Category string    `json:"category" gorm:"type:varchar(64);index"`
	LogoURL  string    `json:"logo_url,omitempty" gorm:"type:text"`
	StoredAt time.Time `json:"stored_at"`
}

// TableName returns the database table name for PartnerRecord.
func (PartnerRecord) TableName() string { return "partners" }

// StoreID implements Entity.
func (r PartnerRecord) StoreID() string { return r.ID }

// AccountRecord is the stored form of the loyalty account. The table holds
// at most one row.
type AccountRecord struct {
	ID       string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name     string    `json:"name" gorm:"type:varchar(255)"`
	Email    string    `json:"email" gorm:"type:varchar(255)"`
	Tier     string    `json:"tier" gorm:"type:varchar(32)"`
	Miles    int64     `json:"miles"`
	StoredAt time.Time `json:"stored_at"`
}

// TableName returns the database table name for AccountRecord.
func (AccountRecord) TableName() string { return "accounts" }

// StoreID implements Entity.
func (r AccountRecord) StoreID() string { return r.ID }

// ReservationRecord is the stored form of a reservation.
// Synced is false for reservations the server has not acknowledged.
type ReservationRecord struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	FlightID  string    `json:"flight_id" gorm:"type:varchar(64);not null;index"`
	Passenger string    `json:"passenger" gorm:"type:varchar(128);not null"`
	Seat      string    `json:"seat,omitempty" gorm:"type:varchar(8)"`
	Class     string    `json:"class" gorm:"type:varchar(16)"`
	Status    string    `json:"status" gorm:"type:varchar(16);not null"`
	Synced    bool      `json:"synced"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ReservationRecord.
func (ReservationRecord) TableName() string { return "reservations" }

// StoreID implements Entity.
func (r ReservationRecord) StoreID() string { return r.ID }
