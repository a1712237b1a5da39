package lifecycle

import (
	"testing"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(qty float64) *models.Product {
	return &models.Product{
		FarmerID:           "farmer-1",
		Name:               "Tomato",
		Quantity:           qty,
		OriginalQuantity:   qty,
		Unit:               "kg",
		ProductionLocation: "Salem",
		CurrentLocation:    "Salem",
		Status:             models.ProductStatusCreated,
	}
}

func TestDecideRequestOnlyFromPending(t *testing.T) {
	assert.NoError(t, DecideRequest(models.RequestStatusPending, models.RequestStatusAccepted))
	assert.NoError(t, DecideRequest(models.RequestStatusPending, models.RequestStatusRejected))

	err := DecideRequest(models.RequestStatusAccepted, models.RequestStatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = DecideRequest(models.RequestStatusRejected, models.RequestStatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = DecideRequest(models.RequestStatusPending, models.RequestStatusPending)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancelRequestOnlyWhenAccepted(t *testing.T) {
	assert.NoError(t, CancelRequest(models.RequestStatusAccepted))
	assert.ErrorIs(t, CancelRequest(models.RequestStatusPending), ErrInvalidTransition)
	assert.ErrorIs(t, CancelRequest(models.RequestStatusCancelled), ErrInvalidTransition)
	assert.False(t, IsActiveRequest(models.RequestStatusCancelled))
}

func TestAssignSellerOnlyOnce(t *testing.T) {
	p := newProduct(100)
	require.NoError(t, AssignSeller(p, SellerAssignment{SellerID: "seller-1", SellerName: "Fresh Mart", Location: "Chennai", FarmerPrice: 4000, SellingPrice: 50}))

	assert.Equal(t, models.ProductStatusAssignedToSeller, p.Status)
	assert.Equal(t, 50.0, p.SellerPrice)
	assert.Equal(t, 4000.0, p.FarmerPrice)

	err := AssignSeller(p, SellerAssignment{SellerID: "seller-2"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "seller-1", p.SellerID)
}

func TestSaleScenarioPartialThenFull(t *testing.T) {
	p := newProduct(100)
	require.NoError(t, AssignSeller(p, SellerAssignment{SellerID: "seller-1", SellingPrice: 50}))

	sale, err := ApplySale(p, 40)
	require.NoError(t, err)
	assert.Equal(t, 60.0, p.Quantity)
	assert.Equal(t, models.ProductStatusPartiallySold, p.Status)
	assert.Equal(t, models.StepStatusPartiallySold, sale.StepStatus)
	assert.Equal(t, 40.0, sale.Quantity)
	assert.Equal(t, 50.0, sale.UnitPrice)

	sale, err = ApplySale(p, 60)
	require.NoError(t, err)
	assert.True(t, sale.FullySoldOut)
	assert.Equal(t, models.ProductStatusSold, p.Status)
	assert.Zero(t, p.Quantity)

	_, err = ApplySale(p, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplySaleRejectsBadQuantities(t *testing.T) {
	p := newProduct(10)
	p.Status = models.ProductStatusAtSeller

	for _, qty := range []float64{0, -1, 10.5} {
		_, err := ApplySale(p, qty)
		assert.ErrorIs(t, err, ErrInvalidInput, qty)
	}
	assert.Equal(t, 10.0, p.Quantity)
	assert.Equal(t, models.ProductStatusAtSeller, p.Status)
}

func TestApplySaleRoundsFractionalRemainder(t *testing.T) {
	p := newProduct(0.3)
	p.Status = models.ProductStatusAtSeller

	_, err := ApplySale(p, 0.1)
	require.NoError(t, err)
	_, err = ApplySale(p, 0.2)
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusSold, p.Status)
}

func TestApplySaleRequiresStock(t *testing.T) {
	p := newProduct(10)
	_, err := ApplySale(p, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	p.Status = models.ProductStatusInTransit
	_, err = ApplySale(p, 1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransportPath(t *testing.T) {
	p := newProduct(100)
	assert.ErrorIs(t, CheckTransportable(p), ErrInvalidTransition)

	require.NoError(t, AssignSeller(p, SellerAssignment{SellerID: "seller-1", Location: "Chennai"}))
	require.NoError(t, CheckTransportable(p))
	require.NoError(t, BookTransport(p, TransportAssignment{TransporterID: "tr-1", TransporterName: "Kumar", Charge: 1500}))
	assert.ErrorIs(t, BookTransport(p, TransportAssignment{TransporterID: "tr-2"}), ErrConflict)

	require.NoError(t, MarkInTransit(p))
	require.NoError(t, DeliverToSeller(p))
	assert.Equal(t, models.ProductStatusAtSeller, p.Status)
	assert.Equal(t, "Chennai", p.CurrentLocation)
	assert.ErrorIs(t, DeliverToSeller(p), ErrInvalidTransition)
}

func TestReleaseTransportClearsTransporter(t *testing.T) {
	p := newProduct(100)
	require.NoError(t, AssignSeller(p, SellerAssignment{SellerID: "seller-1"}))
	require.NoError(t, BookTransport(p, TransportAssignment{TransporterID: "tr-1", TransporterName: "Kumar"}))

	require.NoError(t, ReleaseTransport(p))
	assert.Equal(t, models.ProductStatusAssignedToSeller, p.Status)
	assert.Empty(t, p.TransporterID)
	assert.Empty(t, p.TransporterName)
	assert.NoError(t, CheckTransportable(p))
}

func TestBookingHappyPath(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusPending}
	require.NoError(t, DecideBooking(b, models.BookingStatusAccepted))
	assert.ErrorIs(t, DecideBooking(b, models.BookingStatusAccepted), ErrInvalidTransition)

	require.NoError(t, PickUp(b))
	assert.Equal(t, models.BookingStatusPickedUp, b.Status)

	assert.ErrorIs(t, CompleteTransport(b, 0), ErrInvalidInput)
	require.NoError(t, CompleteTransport(b, 120))
	assert.Equal(t, models.BookingStatusTransported, b.Status)
	require.NotNil(t, b.Kilometers)
	assert.Equal(t, 120.0, *b.Kilometers)

	assert.ErrorIs(t, CompleteTransport(b, 130), ErrInvalidTransition)
	assert.ErrorIs(t, BackfillKilometers(b, 130), ErrInvalidTransition)
	assert.Equal(t, 120.0, *b.Kilometers)
}

func TestDecideBookingRejectsOtherTargets(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusPending}
	assert.ErrorIs(t, DecideBooking(b, models.BookingStatusTransported), ErrInvalidInput)
	assert.Equal(t, models.BookingStatusPending, b.Status)
}

func TestCancellationAccepted(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusAccepted}

	assert.ErrorIs(t, RequestCancellation(b, "  "), ErrInvalidInput)
	require.NoError(t, RequestCancellation(b, "truck broke down"))
	assert.Equal(t, models.CancellationStatusPending, b.CancellationStatus)

	assert.ErrorIs(t, CompleteTransport(b, 10), ErrInvalidTransition)
	assert.ErrorIs(t, PickUp(b), ErrInvalidTransition)

	require.NoError(t, RespondToCancellation(b, models.CancellationActionAccept))
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.Equal(t, models.CancellationStatusApproved, b.CancellationStatus)
	assert.ErrorIs(t, RespondToCancellation(b, models.CancellationActionAccept), ErrInvalidTransition)
}

func TestCancellationRejectedForcesCompletion(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusPickedUp}
	require.NoError(t, RequestCancellation(b, "rain"))
	require.NoError(t, RespondToCancellation(b, models.CancellationActionReject))

	assert.Equal(t, models.BookingStatusPickedUp, b.Status)
	assert.Equal(t, models.CancellationStatusRejected, b.CancellationStatus)
	assert.ErrorIs(t, RequestCancellation(b, "again"), ErrInvalidTransition)
	assert.NoError(t, CompleteTransport(b, 42))
}

func TestCancellationNeedsLiveBooking(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusPending}
	assert.ErrorIs(t, RequestCancellation(b, "reason"), ErrInvalidTransition)
	assert.ErrorIs(t, RespondToCancellation(b, "MAYBE"), ErrInvalidInput)
}

func TestBackfillKilometersOnlyWhenMissing(t *testing.T) {
	b := &models.Booking{Status: models.BookingStatusTransported}
	assert.ErrorIs(t, BackfillKilometers(b, -5), ErrInvalidInput)
	require.NoError(t, BackfillKilometers(b, 80))
	assert.Equal(t, 80.0, *b.Kilometers)
	assert.ErrorIs(t, BackfillKilometers(b, 90), ErrInvalidTransition)

	accepted := &models.Booking{Status: models.BookingStatusAccepted}
	assert.ErrorIs(t, BackfillKilometers(accepted, 10), ErrInvalidTransition)
}
