package lifecycle

import (
	"fmt"
	"math"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

// Quantities are stored with three decimals.
const quantityScale = 1000

func roundQuantity(q float64) float64 {
	return math.Round(q*quantityScale) / quantityScale
}

type SellerAssignment struct {
	SellerID     string
	SellerName   string
	Location     string
	FarmerPrice  float64
	SellingPrice float64
}

type TransportAssignment struct {
	TransporterID   string
	TransporterName string
	Charge          float64
}

// Editable reports whether the farmer may still change descriptive fields.
func Editable(p *models.Product) bool {
	return p.Status == models.ProductStatusCreated
}

// AssignSeller records an accepted seller request. A batch is assigned at
// most once.
func AssignSeller(p *models.Product, a SellerAssignment) error {
	if p.HasSeller() || p.Status != models.ProductStatusCreated {
		return fmt.Errorf("%w: product already assigned (status %s)", ErrConflict, p.Status)
	}
	p.Status = models.ProductStatusAssignedToSeller
	p.SellerID = a.SellerID
	p.SellerName = a.SellerName
	p.SellerLocation = a.Location
	p.SellerPrice = a.SellingPrice
	p.FarmerPrice = a.FarmerPrice
	return nil
}

// CheckTransportable rejects batches that cannot take a new transporter
// request or booking.
func CheckTransportable(p *models.Product) error {
	if !p.HasSeller() {
		return fmt.Errorf("%w: product has no accepted seller", ErrInvalidTransition)
	}
	if p.Status != models.ProductStatusAssignedToSeller {
		return fmt.Errorf("%w: product is %s", ErrInvalidTransition, p.Status)
	}
	return nil
}

func BookTransport(p *models.Product, a TransportAssignment) error {
	if err := CheckTransportable(p); err != nil {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	p.Status = models.ProductStatusBookedTransport
	p.TransporterID = a.TransporterID
	p.TransporterName = a.TransporterName
	p.TransporterCharge = a.Charge
	return nil
}

func MarkInTransit(p *models.Product) error {
	if p.Status != models.ProductStatusBookedTransport {
		return fmt.Errorf("%w: product is %s", ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProductStatusInTransit
	return nil
}

// ReleaseTransport returns a batch to its seller-assigned state after an
// approved cancellation.
func ReleaseTransport(p *models.Product) error {
	if p.Status != models.ProductStatusBookedTransport && p.Status != models.ProductStatusInTransit {
		return fmt.Errorf("%w: product is %s", ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProductStatusAssignedToSeller
	p.TransporterID = ""
	p.TransporterName = ""
	p.TransporterCharge = 0
	p.CurrentLocation = p.ProductionLocation
	return nil
}

func DeliverToSeller(p *models.Product) error {
	if p.Status != models.ProductStatusBookedTransport && p.Status != models.ProductStatusInTransit {
		return fmt.Errorf("%w: product is %s", ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProductStatusAtSeller
	if p.SellerLocation != "" {
		p.CurrentLocation = p.SellerLocation
	}
	return nil
}

// Sellable reports whether the seller holds stock of the batch.
func Sellable(status models.ProductStatus) bool {
	switch status {
	case models.ProductStatusAssignedToSeller, models.ProductStatusAtSeller, models.ProductStatusPartiallySold:
		return true
	}
	return false
}

type Sale struct {
	Quantity     float64
	Remaining    float64
	UnitPrice    float64
	StepStatus   models.JourneyStepStatus
	FullySoldOut bool
}

// ApplySale decrements the remaining quantity. The returned Sale carries the
// values the journey step must record.
func ApplySale(p *models.Product, qty float64) (Sale, error) {
	if !Sellable(p.Status) {
		return Sale{}, fmt.Errorf("%w: product is %s", ErrInvalidTransition, p.Status)
	}
	qty = roundQuantity(qty)
	if qty <= 0 {
		return Sale{}, fmt.Errorf("%w: quantity must be greater than 0", ErrInvalidInput)
	}
	if qty > roundQuantity(p.Quantity) {
		return Sale{}, fmt.Errorf("%w: quantity %.3f exceeds remaining %.3f", ErrInvalidInput, qty, p.Quantity)
	}

	p.Quantity = roundQuantity(p.Quantity - qty)
	sale := Sale{Quantity: qty, Remaining: p.Quantity, UnitPrice: p.SellerPrice}
	if p.Quantity == 0 {
		p.Status = models.ProductStatusSold
		sale.StepStatus = models.StepStatusSold
		sale.FullySoldOut = true
	} else {
		p.Status = models.ProductStatusPartiallySold
		sale.StepStatus = models.StepStatusPartiallySold
	}
	return sale, nil
}
