// Package revenue derives earnings from journey steps, accepted seller
// requests and delivered bookings. Nothing is stored: every call recomputes
// from the records it is handed.
package revenue

import (
	"math"
	"sort"
	"time"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"

	"github.com/google/uuid"
)

type Entry struct {
	ProductID    uuid.UUID  `json:"product_id"`
	ProductName  string     `json:"product_name"`
	BookingID    *uuid.UUID `json:"booking_id,omitempty"`
	Quantity     float64    `json:"quantity,omitempty"`
	Unit         string     `json:"unit,omitempty"`
	UnitPrice    float64    `json:"unit_price,omitempty"`
	Kilometers   float64    `json:"kilometers,omitempty"`
	Amount       float64    `json:"amount"`
	Counterparty string     `json:"counterparty,omitempty"`
	OccurredAt   time.Time  `json:"occurred_at"`
}

// MissingKilometers is a delivered booking that needs a distance backfill
// before it can count.
type MissingKilometers struct {
	BookingID   uuid.UUID `json:"booking_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type Summary struct {
	Role              models.Role         `json:"role"`
	UserID            string              `json:"user_id"`
	Total             float64             `json:"total"`
	Entries           []Entry             `json:"entries"`
	MissingKilometers []MissingKilometers `json:"missing_kilometers,omitempty"`
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// acceptedPrices indexes ACCEPTED seller requests by product.
func acceptedPrices(requests []models.SellerRequest) map[uuid.UUID]models.SellerRequest {
	prices := make(map[uuid.UUID]models.SellerRequest, len(requests))
	for _, r := range requests {
		if r.Status == models.RequestStatusAccepted {
			prices[r.ProductID] = r
		}
	}
	return prices
}

// Farmer sums consumer sales of the farmer's products. The unit price is the
// one captured on the sale step, else the accepted request's selling price,
// else the product's current seller price.
func Farmer(farmerID string, products []models.Product, requests []models.SellerRequest) Summary {
	prices := acceptedPrices(requests)
	summary := Summary{Role: models.RoleFarmer, UserID: farmerID, Entries: []Entry{}}

	for _, p := range products {
		if p.FarmerID != farmerID {
			continue
		}
		for _, step := range p.Journey {
			if !step.IsSale() || step.Quantity == nil {
				continue
			}
			unit := 0.0
			switch {
			case step.Price != nil && *step.Price > 0:
				unit = *step.Price
			case prices[p.ID].SellingPrice > 0:
				unit = prices[p.ID].SellingPrice
			default:
				unit = p.SellerPrice
			}
			summary.Entries = append(summary.Entries, Entry{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Quantity:     *step.Quantity,
				Unit:         p.Unit,
				UnitPrice:    unit,
				Amount:       roundMoney(unit * *step.Quantity),
				Counterparty: p.SellerName,
				OccurredAt:   step.CreatedAt,
			})
		}
	}

	return finish(summary)
}

// Seller values each sale at the farmer-to-seller batch charge spread over
// the batch's original quantity.
func Seller(sellerID string, products []models.Product, requests []models.SellerRequest) Summary {
	prices := acceptedPrices(requests)
	summary := Summary{Role: models.RoleSeller, UserID: sellerID, Entries: []Entry{}}

	for _, p := range products {
		if p.SellerID != sellerID {
			continue
		}
		charge := p.FarmerPrice
		if charge <= 0 {
			charge = prices[p.ID].FarmerPrice
		}
		perUnit := 0.0
		if p.OriginalQuantity > 0 {
			perUnit = charge / p.OriginalQuantity
		}

		for _, step := range p.Journey {
			if !step.IsSale() || step.Quantity == nil {
				continue
			}
			summary.Entries = append(summary.Entries, Entry{
				ProductID:    p.ID,
				ProductName:  p.Name,
				Quantity:     *step.Quantity,
				Unit:         p.Unit,
				UnitPrice:    roundMoney(perUnit),
				Amount:       roundMoney(perUnit * *step.Quantity),
				Counterparty: p.FarmerName,
				OccurredAt:   step.CreatedAt,
			})
		}
	}

	return finish(summary)
}

// Transporter multiplies the frozen distance of each delivered booking by the
// transporter's declared rate. Deliveries without a distance are listed for
// backfill instead of being counted as zero.
func Transporter(transporterID string, chargePerKm float64, bookings []models.Booking, productNames map[uuid.UUID]string) Summary {
	summary := Summary{Role: models.RoleTransporter, UserID: transporterID, Entries: []Entry{}}

	for _, b := range bookings {
		if b.TransporterID != transporterID || b.Status != models.BookingStatusTransported {
			continue
		}
		if b.Kilometers == nil || *b.Kilometers <= 0 {
			summary.MissingKilometers = append(summary.MissingKilometers, MissingKilometers{
				BookingID:   b.ID,
				ProductID:   b.ProductID,
				ProductName: productNames[b.ProductID],
				DeliveredAt: b.UpdatedAt,
			})
			continue
		}
		id := b.ID
		summary.Entries = append(summary.Entries, Entry{
			ProductID:   b.ProductID,
			ProductName: productNames[b.ProductID],
			BookingID:   &id,
			Kilometers:  *b.Kilometers,
			UnitPrice:   chargePerKm,
			Amount:      roundMoney(*b.Kilometers * chargePerKm),
			OccurredAt:  b.UpdatedAt,
		})
	}

	sort.SliceStable(summary.MissingKilometers, func(i, j int) bool {
		return summary.MissingKilometers[i].DeliveredAt.After(summary.MissingKilometers[j].DeliveredAt)
	})

	return finish(summary)
}

func finish(s Summary) Summary {
	sort.SliceStable(s.Entries, func(i, j int) bool {
		a, b := s.Entries[i], s.Entries[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		return a.ProductID.String() < b.ProductID.String()
	})

	total := 0.0
	for _, e := range s.Entries {
		total += e.Amount
	}
	s.Total = roundMoney(total)
	return s
}
