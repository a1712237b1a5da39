package revenue

import (
	"testing"
	"time"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func saleStep(productID uuid.UUID, seq int, status models.JourneyStepStatus, qty float64, price *float64, at time.Time) models.JourneyStep {
	step := models.JourneyStep{
		ProductID: productID,
		Sequence:  seq,
		Type:      models.JourneyStepSeller,
		Status:    status,
		Quantity:  ptr(qty),
		Price:     price,
	}
	step.CreatedAt = at
	return step
}

func fixture() ([]models.Product, []models.SellerRequest) {
	tomato := models.Product{
		FarmerID:         "farmer-1",
		FarmerName:       "Ravi",
		Name:             "Tomato",
		Unit:             "kg",
		Quantity:         0,
		OriginalQuantity: 100,
		SellerID:         "seller-1",
		SellerName:       "Fresh Mart",
		SellerPrice:      55,
		FarmerPrice:      4000,
		Status:           models.ProductStatusSold,
	}
	tomato.ID = uuid.New()
	tomato.Journey = []models.JourneyStep{
		{ProductID: tomato.ID, Sequence: 1, Type: models.JourneyStepLocation, Status: models.StepStatusCompleted},
		saleStep(tomato.ID, 2, models.StepStatusPartiallySold, 40, ptr(50), base),
		saleStep(tomato.ID, 3, models.StepStatusSold, 60, nil, base.Add(time.Hour)),
	}

	onion := models.Product{
		FarmerID:         "farmer-1",
		Name:             "Onion",
		Unit:             "kg",
		Quantity:         30,
		OriginalQuantity: 50,
		SellerID:         "seller-1",
		Status:           models.ProductStatusPartiallySold,
	}
	onion.ID = uuid.New()
	onion.Journey = []models.JourneyStep{
		saleStep(onion.ID, 2, models.StepStatusPartiallySold, 20, nil, base.Add(2*time.Hour)),
	}

	requests := []models.SellerRequest{
		{ProductID: tomato.ID, SellerID: "seller-1", FarmerPrice: 4000, SellingPrice: 52, Status: models.RequestStatusAccepted},
		{ProductID: onion.ID, SellerID: "seller-1", FarmerPrice: 1000, SellingPrice: 30, Status: models.RequestStatusAccepted},
		{ProductID: onion.ID, SellerID: "seller-2", FarmerPrice: 9999, SellingPrice: 99, Status: models.RequestStatusRejected},
	}
	return []models.Product{tomato, onion}, requests
}

func TestFarmerRevenueResolvesUnitPrice(t *testing.T) {
	products, requests := fixture()
	summary := Farmer("farmer-1", products, requests)

	require.Len(t, summary.Entries, 3)

	// newest first: onion, tomato full sale, tomato partial sale
	assert.Equal(t, "Onion", summary.Entries[0].ProductName)
	assert.Equal(t, 30.0, summary.Entries[0].UnitPrice, "falls back to accepted request selling price")
	assert.Equal(t, 600.0, summary.Entries[0].Amount)

	assert.Equal(t, 52.0, summary.Entries[1].UnitPrice, "step without price uses accepted request")
	assert.Equal(t, 3120.0, summary.Entries[1].Amount)

	assert.Equal(t, 50.0, summary.Entries[2].UnitPrice, "step price wins")
	assert.Equal(t, 2000.0, summary.Entries[2].Amount)

	assert.Equal(t, 5720.0, summary.Total)
}

func TestFarmerRevenueFallsBackToProductSellerPrice(t *testing.T) {
	products, _ := fixture()
	summary := Farmer("farmer-1", products[:1], nil)
	assert.Equal(t, 55.0, summary.Entries[0].UnitPrice)
}

func TestFarmerRevenueIgnoresOtherFarmers(t *testing.T) {
	products, requests := fixture()
	summary := Farmer("farmer-2", products, requests)
	assert.Empty(t, summary.Entries)
	assert.Zero(t, summary.Total)
}

func TestSellerRevenueUsesPerUnitFarmerCharge(t *testing.T) {
	products, requests := fixture()
	summary := Seller("seller-1", products, requests)

	require.Len(t, summary.Entries, 3)
	// onion: no farmer price on product, request says 1000 for 50 kg
	assert.Equal(t, 20.0, summary.Entries[0].UnitPrice)
	assert.Equal(t, 400.0, summary.Entries[0].Amount)
	// tomato: 4000 over 100 kg
	assert.Equal(t, 40.0, summary.Entries[1].UnitPrice)
	assert.Equal(t, 2400.0, summary.Entries[1].Amount)
	assert.Equal(t, 1600.0, summary.Entries[2].Amount)
	assert.Equal(t, 4400.0, summary.Total)
}

func TestTransporterRevenue(t *testing.T) {
	productID := uuid.New()
	delivered := models.Booking{ProductID: productID, TransporterID: "tr-1", Status: models.BookingStatusTransported, Kilometers: ptr(120)}
	delivered.ID = uuid.New()
	delivered.UpdatedAt = base

	missing := models.Booking{ProductID: productID, TransporterID: "tr-1", Status: models.BookingStatusTransported}
	missing.ID = uuid.New()

	accepted := models.Booking{ProductID: productID, TransporterID: "tr-1", Status: models.BookingStatusAccepted, Kilometers: ptr(999)}
	other := models.Booking{ProductID: productID, TransporterID: "tr-2", Status: models.BookingStatusTransported, Kilometers: ptr(50)}

	summary := Transporter("tr-1", 10, []models.Booking{delivered, missing, accepted, other}, map[uuid.UUID]string{productID: "Tomato"})

	require.Len(t, summary.Entries, 1)
	assert.Equal(t, 1200.0, summary.Entries[0].Amount)
	assert.Equal(t, "Tomato", summary.Entries[0].ProductName)
	assert.Equal(t, 1200.0, summary.Total)

	require.Len(t, summary.MissingKilometers, 1)
	assert.Equal(t, missing.ID, summary.MissingKilometers[0].BookingID)
}

func TestRevenueIsIdempotent(t *testing.T) {
	products, requests := fixture()
	assert.Equal(t, Farmer("farmer-1", products, requests), Farmer("farmer-1", products, requests))
	assert.Equal(t, Seller("seller-1", products, requests), Seller("seller-1", products, requests))
}

func TestSoldQuantityNeverExceedsOriginal(t *testing.T) {
	products, _ := fixture()
	for _, p := range products {
		sold := 0.0
		for _, step := range p.Journey {
			if step.IsSale() {
				sold += *step.Quantity
			}
		}
		assert.LessOrEqual(t, sold, p.OriginalQuantity, p.Name)
	}
}
