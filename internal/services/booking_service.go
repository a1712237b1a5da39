// internal/services/booking_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/lifecycle"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type BookingService struct {
	db      *gorm.DB
	emitter *events.Emitter
}

type CreateBookingRequest struct {
	ProductID            uuid.UUID `json:"product_id" validate:"required"`
	TransporterID        string    `json:"transporter_id" validate:"required,max=128"`
	FarmerDemandedCharge float64   `json:"farmer_demanded_charge" validate:"gt=0,lte=9999999999.99"`
	TransportDate        time.Time `json:"transport_date" validate:"required"`
}

type BookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

type CancellationRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=1000"`
}

type CancellationResponse struct {
	Action models.CancellationAction `json:"action" validate:"required,oneof=ACCEPT REJECT"`
}

type KilometersRequest struct {
	Kilometers float64 `json:"kilometers" validate:"gt=0,lte=99999999.99"`
}

type BookingFilter struct {
	ProductID     *uuid.UUID
	FarmerID      string
	TransporterID string
	Status        models.BookingStatus
}

func NewBookingService(db *gorm.DB, emitter *events.Emitter) *BookingService {
	return &BookingService{db: db, emitter: emitter}
}

// bookTransport commits a transporter to the batch: booking ACCEPTED, product
// BOOKED_TRANSPORT and a TRANSPORT/ACCEPTED journey step. A second live
// booking for the product trips the partial unique index.
func bookTransport(tx *gorm.DB, product *models.Product, booking *models.Booking) error {
	transporter, err := findUser(tx, booking.TransporterID)
	if err != nil {
		return err
	}

	if err := lifecycle.BookTransport(product, lifecycle.TransportAssignment{
		TransporterID:   transporter.ID,
		TransporterName: transporter.DisplayName(),
		Charge:          booking.FarmerDemandedCharge,
	}); err != nil {
		return err
	}

	booking.Status = models.BookingStatusAccepted
	booking.TransporterCharge = booking.FarmerDemandedCharge

	if booking.ID == uuid.Nil {
		err = tx.Create(booking).Error
	} else {
		err = tx.Model(booking).Updates(map[string]interface{}{
			"status":             booking.Status,
			"transporter_charge": booking.TransporterCharge,
		}).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: product already has a live booking", ErrConflict)
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}

	if err := tx.Model(product).Updates(map[string]interface{}{
		"status":             product.Status,
		"transporter_id":     product.TransporterID,
		"transporter_name":   product.TransporterName,
		"transporter_charge": product.TransporterCharge,
	}).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return appendStep(tx, &models.JourneyStep{
		ProductID:   product.ID,
		Type:        models.JourneyStepTransport,
		Status:      models.StepStatusAccepted,
		ActorID:     transporter.ID,
		ActorName:   product.TransporterName,
		Location:    product.CurrentLocation,
		Price:       floatPtr(booking.TransporterCharge),
		Description: message(i18n.KeyJourneyTransportBooked, product.TransporterName),
	})
}

// Create books a transporter directly. The booking waits in PENDING for the
// transporter's answer.
func (s *BookingService) Create(ctx context.Context, actor Actor, req *CreateBookingRequest) (*models.Booking, error) {
	if err := actor.require(models.RoleFarmer); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	booking := &models.Booking{
		ProductID:            req.ProductID,
		TransporterID:        req.TransporterID,
		FarmerDemandedCharge: req.FarmerDemandedCharge,
		TransportDate:        req.TransportDate.UTC(),
		Status:               models.BookingStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, _, err := checkTransportPreconditions(tx, actor, req.ProductID, req.TransporterID)
		if err != nil {
			return err
		}

		booking.FarmerID = product.FarmerID
		if err := tx.Create(booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product already has a live booking", ErrConflict)
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return notify(tx, booking.TransporterID, models.NotificationTypeInfo,
			message(i18n.KeyNotifyBookingCreated, displayName(tx, product.FarmerID), product.Name), &booking.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.BookingCreated, events.AggregateBooking, booking.ID, actor.ID, map[string]interface{}{
		"product_id":     booking.ProductID,
		"transporter_id": booking.TransporterID,
	}))
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Product").First(&booking, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "booking")
	}
	if booking.FarmerID != actor.ID && booking.TransporterID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden("not a party to this booking")
	}
	return &booking, nil
}

func (s *BookingService) List(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := s.db.WithContext(ctx).Model(&models.Booking{}).Preload("Product")
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.FarmerID != "" {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.TransporterID != "" {
		query = query.Where("transporter_id = ?", filter.TransporterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}
	return bookings, nil
}

// mutate runs fn against the locked booking and its locked product, then
// publishes eventType once the transaction commits.
func (s *BookingService) mutate(ctx context.Context, actor Actor, id uuid.UUID, eventType string,
	fn func(tx *gorm.DB, booking *models.Booking, product *models.Product) error) (*models.Booking, error) {
	var booking *models.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = lockBooking(tx, id)
		if err != nil {
			return err
		}
		product, err := lockProduct(tx, booking.ProductID)
		if err != nil {
			return err
		}
		return fn(tx, booking, product)
	})
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"product_id": booking.ProductID,
		"status":     booking.Status,
	}
	if booking.Kilometers != nil {
		payload["kilometers"] = *booking.Kilometers
	}
	s.emitter.Emit(events.New(eventType, events.AggregateBooking, booking.ID, actor.ID, payload))
	return booking, nil
}

func transporterOnly(actor Actor, booking *models.Booking) error {
	if booking.TransporterID != actor.ID {
		return forbidden("only the booked transporter can do this")
	}
	return nil
}

func farmerOnly(actor Actor, booking *models.Booking) error {
	if booking.FarmerID != actor.ID {
		return forbidden("only the booking's farmer can do this")
	}
	return nil
}

// Decide answers a PENDING direct booking.
func (s *BookingService) Decide(ctx context.Context, actor Actor, id uuid.UUID, req *BookingStatusRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	eventType := events.BookingAccepted
	if req.Status == models.BookingStatusRejected {
		eventType = events.BookingRejected
	}

	return s.mutate(ctx, actor, id, eventType, func(tx *gorm.DB, booking *models.Booking, product *models.Product) error {
		if booking.TransporterID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the booked transporter can answer")
		}

		if req.Status == models.BookingStatusAccepted {
			if booking.Status != models.BookingStatusPending {
				return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, booking.Status)
			}
			if err := bookTransport(tx, product, booking); err != nil {
				return err
			}
			return notify(tx, booking.FarmerID, models.NotificationTypeInfo,
				message(i18n.KeyNotifyTransporterRequestAccepted, product.TransporterName, product.Name), &booking.ID)
		}

		if err := lifecycle.DecideBooking(booking, models.BookingStatusRejected); err != nil {
			return err
		}
		if err := tx.Model(booking).Update("status", booking.Status).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return notify(tx, booking.FarmerID, models.NotificationTypeAlert,
			message(i18n.KeyNotifyBookingRejected, displayName(tx, booking.TransporterID), product.Name), &booking.ID)
	})
}

func (s *BookingService) MarkPickedUp(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	return s.mutate(ctx, actor, id, events.BookingPickedUp, func(tx *gorm.DB, booking *models.Booking, product *models.Product) error {
		if err := transporterOnly(actor, booking); err != nil {
			return err
		}
		if err := lifecycle.PickUp(booking); err != nil {
			return err
		}
		if err := lifecycle.MarkInTransit(product); err != nil {
			return err
		}

		if err := tx.Model(booking).Update("status", booking.Status).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		if err := tx.Model(product).Update("status", product.Status).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := appendStep(tx, &models.JourneyStep{
			ProductID:   product.ID,
			Type:        models.JourneyStepTransport,
			Status:      models.StepStatusPending,
			ActorID:     booking.TransporterID,
			ActorName:   product.TransporterName,
			Location:    product.CurrentLocation,
			Description: message(i18n.KeyJourneyPickedUp, product.TransporterName),
		}); err != nil {
			return err
		}

		return notify(tx, booking.FarmerID, models.NotificationTypeInfo,
			message(i18n.KeyNotifyBookingPickedUp, product.TransporterName, product.Name), &booking.ID)
	})
}

// RequestCancellation asks the farmer to release the transporter. Only one
// attempt is allowed per booking.
func (s *BookingService) RequestCancellation(ctx context.Context, actor Actor, id uuid.UUID, req *CancellationRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	return s.mutate(ctx, actor, id, events.BookingCancellationRequested, func(tx *gorm.DB, booking *models.Booking, product *models.Product) error {
		if err := transporterOnly(actor, booking); err != nil {
			return err
		}
		if err := lifecycle.RequestCancellation(booking, req.Reason); err != nil {
			return err
		}

		if err := tx.Model(booking).Updates(map[string]interface{}{
			"cancellation_status": booking.CancellationStatus,
			"cancellation_reason": booking.CancellationReason,
		}).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		return notify(tx, booking.FarmerID, models.NotificationTypeCancellationRequest,
			message(i18n.KeyNotifyCancellationRequested, displayName(tx, booking.TransporterID), product.Name, booking.CancellationReason),
			&booking.ID)
	})
}

// RespondToCancellation settles a pending cancellation. Approval releases the
// batch back to its seller-assigned state; rejection obliges the transporter
// to deliver.
func (s *BookingService) RespondToCancellation(ctx context.Context, actor Actor, id uuid.UUID, req *CancellationResponse) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	eventType := events.BookingCancellationApproved
	if req.Action == models.CancellationActionReject {
		eventType = events.BookingCancellationRejected
	}

	return s.mutate(ctx, actor, id, eventType, func(tx *gorm.DB, booking *models.Booking, product *models.Product) error {
		if err := farmerOnly(actor, booking); err != nil {
			return err
		}
		if err := lifecycle.RespondToCancellation(booking, req.Action); err != nil {
			return err
		}

		if err := tx.Model(booking).Updates(map[string]interface{}{
			"status":              booking.Status,
			"cancellation_status": booking.CancellationStatus,
		}).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		outcome := models.ActionStatusRejected
		alert := message(i18n.KeyNotifyCancellationRejected, product.Name)

		if req.Action == models.CancellationActionAccept {
			outcome = models.ActionStatusAccepted
			alert = message(i18n.KeyNotifyCancellationApproved, product.Name)
			transporterName := product.TransporterName

			if err := lifecycle.ReleaseTransport(product); err != nil {
				return err
			}
			if err := tx.Model(product).Updates(map[string]interface{}{
				"status":             product.Status,
				"transporter_id":     "",
				"transporter_name":   "",
				"transporter_charge": 0,
				"current_location":   product.CurrentLocation,
			}).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}

			if err := appendStep(tx, &models.JourneyStep{
				ProductID:   product.ID,
				Type:        models.JourneyStepTransport,
				Status:      models.StepStatusRejected,
				ActorID:     booking.TransporterID,
				ActorName:   transporterName,
				Location:    product.CurrentLocation,
				Description: message(i18n.KeyJourneyCancelled, transporterName) + ": " + booking.CancellationReason,
			}); err != nil {
				return err
			}

			if booking.TransporterRequestID != nil {
				request, err := lockTransporterRequest(tx, *booking.TransporterRequestID)
				if err != nil {
					return err
				}
				if err := lifecycle.CancelRequest(request.Status); err != nil {
					return err
				}
				if err := tx.Model(request).Update("status", models.RequestStatusCancelled).Error; err != nil {
					return fmt.Errorf("failed to update transporter request: %w", err)
				}
			}
		}

		if err := resolveCancellation(tx, booking.FarmerID, booking.ID, outcome); err != nil {
			return err
		}
		return notify(tx, booking.TransporterID, models.NotificationTypeAlert, alert, &booking.ID)
	})
}

// CompleteTransport records delivery and freezes the distance.
func (s *BookingService) CompleteTransport(ctx context.Context, actor Actor, id uuid.UUID, req *KilometersRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	return s.mutate(ctx, actor, id, events.BookingTransported, func(tx *gorm.DB, booking *models.Booking, product *models.Product) error {
		if err := transporterOnly(actor, booking); err != nil {
			return err
		}
		if err := lifecycle.CompleteTransport(booking, req.Kilometers); err != nil {
			return err
		}
		if err := lifecycle.DeliverToSeller(product); err != nil {
			return err
		}

		if err := tx.Model(booking).Updates(map[string]interface{}{
			"status":     booking.Status,
			"kilometers": *booking.Kilometers,
		}).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		if err := tx.Model(product).Updates(map[string]interface{}{
			"status":           product.Status,
			"current_location": product.CurrentLocation,
		}).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := appendStep(tx, &models.JourneyStep{
			ProductID:   product.ID,
			Type:        models.JourneyStepTransport,
			Status:      models.StepStatusCompleted,
			ActorID:     booking.TransporterID,
			ActorName:   product.TransporterName,
			Location:    product.CurrentLocation,
			Description: message(i18n.KeyJourneyDelivered, product.SellerName),
		}); err != nil {
			return err
		}

		text := message(i18n.KeyNotifyTransported, product.TransporterName, product.Name, product.CurrentLocation)
		if err := notify(tx, booking.FarmerID, models.NotificationTypeInfo, text, &booking.ID); err != nil {
			return err
		}
		return notify(tx, product.SellerID, models.NotificationTypeInfo, text, &product.ID)
	})
}

// UpdateKilometers backfills a delivery recorded without a distance.
func (s *BookingService) UpdateKilometers(ctx context.Context, actor Actor, id uuid.UUID, req *KilometersRequest) (*models.Booking, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	return s.mutate(ctx, actor, id, events.BookingKilometersUpdated, func(tx *gorm.DB, booking *models.Booking, _ *models.Product) error {
		if err := transporterOnly(actor, booking); err != nil {
			return err
		}
		if err := lifecycle.BackfillKilometers(booking, req.Kilometers); err != nil {
			return err
		}
		if err := tx.Model(booking).Update("kilometers", *booking.Kilometers).Error; err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return nil
	})
}
