// internal/models/booking.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	BaseModel
	ProductID            uuid.UUID          `json:"product_id" gorm:"type:uuid;not null;index"`
	FarmerID             string             `json:"farmer_id" gorm:"size:128;not null;index"`
	TransporterID        string             `json:"transporter_id" gorm:"size:128;not null;index"`
	TransporterRequestID *uuid.UUID         `json:"transporter_request_id,omitempty" gorm:"type:uuid;index"`
	FarmerDemandedCharge float64            `json:"farmer_demanded_charge" gorm:"type:decimal(12,2);not null"`
	TransporterCharge    float64            `json:"transporter_charge" gorm:"type:decimal(12,2);default:0"`
	TransportDate        time.Time          `json:"transport_date" gorm:"not null"`
	Status               BookingStatus      `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	Kilometers           *float64           `json:"kilometers,omitempty" gorm:"type:decimal(10,2)"`
	CancellationStatus   CancellationStatus `json:"cancellation_status,omitempty" gorm:"type:varchar(20)"`
	CancellationReason   string             `json:"cancellation_reason,omitempty" gorm:"type:text"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Live bookings hold the batch: at most one may exist per product.
func (b *Booking) IsLive() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusPickedUp:
		return true
	}
	return false
}
