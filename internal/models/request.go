// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type SellerRequest struct {
	BaseModel
	ProductID    uuid.UUID     `json:"product_id" gorm:"type:uuid;not null;index"`
	FarmerID     string        `json:"farmer_id" gorm:"size:128;not null;index"`
	SellerID     string        `json:"seller_id" gorm:"size:128;not null;index"`
	FarmerPrice  float64       `json:"farmer_price" gorm:"type:decimal(12,2);not null"`
	SellingPrice float64       `json:"selling_price" gorm:"type:decimal(12,2);not null"`
	Status       RequestStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type TransporterRequest struct {
	BaseModel
	ProductID            uuid.UUID     `json:"product_id" gorm:"type:uuid;not null;index"`
	FarmerID             string        `json:"farmer_id" gorm:"size:128;not null;index"`
	TransporterID        string        `json:"transporter_id" gorm:"size:128;not null;index"`
	SellerID             string        `json:"seller_id" gorm:"size:128"`
	SellerLocation       string        `json:"seller_location" gorm:"size:255"`
	FarmerDemandedCharge float64       `json:"farmer_demanded_charge" gorm:"type:decimal(12,2);not null"`
	TransportDate        time.Time     `json:"transport_date" gorm:"not null"`
	Status               RequestStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
