// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	FarmerID           string         `json:"farmer_id" gorm:"size:128;not null;index"`
	FarmerName         string         `json:"farmer_name" gorm:"size:255"`
	Name               string         `json:"name" gorm:"size:255;not null"`
	Description        string         `json:"description,omitempty" gorm:"type:text"`
	Quantity           float64        `json:"quantity" gorm:"type:decimal(12,3);not null"`
	OriginalQuantity   float64        `json:"original_quantity" gorm:"type:decimal(12,3);not null"`
	Unit               string         `json:"unit" gorm:"size:20;not null"`
	ProductionLocation string         `json:"production_location" gorm:"size:255;not null"`
	CurrentLocation    string         `json:"current_location" gorm:"size:255"`
	QRCode             string         `json:"qr_code" gorm:"size:512"`
	Tags               pq.StringArray `json:"tags" gorm:"type:text[]"`
	Status             ProductStatus  `json:"status" gorm:"type:varchar(30);default:'CREATED';index"`

	// Assigned seller
	SellerID       string  `json:"seller_id,omitempty" gorm:"size:128;index"`
	SellerName     string  `json:"seller_name,omitempty" gorm:"size:255"`
	SellerLocation string  `json:"seller_location,omitempty" gorm:"size:255"`
	SellerPrice    float64 `json:"seller_price,omitempty" gorm:"type:decimal(12,2);default:0"`
	FarmerPrice    float64 `json:"farmer_price,omitempty" gorm:"type:decimal(12,2);default:0"`

	// Assigned transporter
	TransporterID     string  `json:"transporter_id,omitempty" gorm:"size:128;index"`
	TransporterName   string  `json:"transporter_name,omitempty" gorm:"size:255"`
	TransporterCharge float64 `json:"transporter_charge,omitempty" gorm:"type:decimal(12,2);default:0"`

	// Relationships
	Journey []JourneyStep `json:"journey,omitempty" gorm:"foreignKey:ProductID"`
}

// HasSeller reports whether a seller request for the product has been accepted.
func (p *Product) HasSeller() bool {
	return p.SellerID != ""
}

// JourneyStep is an append-only timeline entry. Steps are only ever inserted
// in the same transaction as the change they record.
type JourneyStep struct {
	BaseModel
	ProductID   uuid.UUID         `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_journey_product_sequence,priority:1"`
	Sequence    int               `json:"sequence" gorm:"not null;uniqueIndex:idx_journey_product_sequence,priority:2"`
	Type        JourneyStepType   `json:"type" gorm:"type:varchar(20);not null;index"`
	Status      JourneyStepStatus `json:"status" gorm:"type:varchar(20);not null"`
	ActorID     string            `json:"actor_id,omitempty" gorm:"size:128"`
	ActorName   string            `json:"actor_name,omitempty" gorm:"size:255"`
	Location    string            `json:"location,omitempty" gorm:"size:255"`
	Quantity    *float64          `json:"quantity,omitempty" gorm:"type:decimal(12,3)"`
	Price       *float64          `json:"price,omitempty" gorm:"type:decimal(12,2)"`
	Description string            `json:"description,omitempty" gorm:"type:text"`
}

// IsSale reports whether the step records a (partial) sale.
func (s *JourneyStep) IsSale() bool {
	return s.Type == JourneyStepSeller &&
		(s.Status == StepStatusSold || s.Status == StepStatusPartiallySold)
}
