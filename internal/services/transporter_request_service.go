// internal/services/transporter_request_service.go
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

type TransporterRequestService struct {
	db      *gorm.DB
	emitter *events.Emitter
}

type CreateTransporterRequestRequest struct {
	ProductID            uuid.UUID `json:"product_id" validate:"required"`
	TransporterID        string    `json:"transporter_id" validate:"required,max=128"`
	FarmerDemandedCharge float64   `json:"farmer_demanded_charge" validate:"gt=0,lte=9999999999.99"`
	TransportDate        time.Time `json:"transport_date" validate:"required"`
}

func NewTransporterRequestService(db *gorm.DB, emitter *events.Emitter) *TransporterRequestService {
	return &TransporterRequestService{db: db, emitter: emitter}
}

// checkTransportPreconditions is shared by transporter requests and direct
// bookings: the batch needs an accepted seller, must not already be moving
// and must have no live booking.
func checkTransportPreconditions(tx *gorm.DB, actor Actor, productID uuid.UUID, transporterID string) (*models.Product, *models.User, error) {
	product, err := lockProduct(tx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product.FarmerID != actor.ID && !actor.IsAdmin() {
		return nil, nil, forbidden("product belongs to another farmer")
	}
	if err := lifecycle.CheckTransportable(product); err != nil {
		return nil, nil, err
	}

	live, err := liveBookingCount(tx, productID)
	if err != nil {
		return nil, nil, err
	}
	if live > 0 {
		return nil, nil, fmt.Errorf("%w: product already has a live booking", ErrConflict)
	}

	transporter, err := findUser(tx, transporterID)
	if err != nil {
		return nil, nil, err
	}
	if transporter.Role != models.RoleTransporter {
		return nil, nil, fmt.Errorf("%w: user %s is not a transporter", ErrValidation, transporterID)
	}
	return product, transporter, nil
}

func (s *TransporterRequestService) Create(ctx context.Context, actor Actor, req *CreateTransporterRequestRequest) (*models.TransporterRequest, error) {
	if err := actor.require(models.RoleFarmer); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	request := &models.TransporterRequest{
		ProductID:            req.ProductID,
		TransporterID:        req.TransporterID,
		FarmerDemandedCharge: req.FarmerDemandedCharge,
		TransportDate:        req.TransportDate.UTC(),
		Status:               models.RequestStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, _, err := checkTransportPreconditions(tx, actor, req.ProductID, req.TransporterID)
		if err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.TransporterRequest{}).
			Where("product_id = ? AND transporter_id = ? AND status IN ?", req.ProductID, req.TransporterID,
				[]models.RequestStatus{models.RequestStatusPending, models.RequestStatusAccepted}).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check existing requests: %w", err)
		}
		if active > 0 {
			return ErrDuplicateRequest
		}

		request.FarmerID = product.FarmerID
		request.SellerID = product.SellerID
		request.SellerLocation = product.SellerLocation
		if err := tx.Create(request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("failed to create transporter request: %w", err)
		}

		return notify(tx, req.TransporterID, models.NotificationTypeInfo,
			message(i18n.KeyNotifyTransporterRequestCreated, displayName(tx, product.FarmerID), product.Name, product.SellerLocation),
			&request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.TransporterRequestCreated, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
		"product_id":     request.ProductID,
		"transporter_id": request.TransporterID,
		"charge":         request.FarmerDemandedCharge,
	}))
	return request, nil
}

func (s *TransporterRequestService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.TransporterRequest, error) {
	var request models.TransporterRequest
	if err := s.db.WithContext(ctx).Preload("Product").First(&request, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "transporter_request")
	}
	if request.FarmerID != actor.ID && request.TransporterID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden("not a party to this request")
	}
	return &request, nil
}

func (s *TransporterRequestService) List(ctx context.Context, filter RequestFilter) ([]models.TransporterRequest, error) {
	query := s.db.WithContext(ctx).Model(&models.TransporterRequest{}).Preload("Product")
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.FarmerID != "" {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.CounterpartyID != "" {
		query = query.Where("transporter_id = ?", filter.CounterpartyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var requests []models.TransporterRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch transporter requests: %w", err)
	}
	return requests, nil
}

func (s *TransporterRequestService) Decide(ctx context.Context, actor Actor, id uuid.UUID, req *StatusUpdateRequest) (*models.TransporterRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}
	if req.Status == models.RequestStatusAccepted {
		request, _, err := s.Accept(ctx, actor, id)
		return request, err
	}
	return s.Reject(ctx, actor, id)
}

// Accept turns the request into an ACCEPTED booking and books the batch in
// one transaction.
func (s *TransporterRequestService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.TransporterRequest, *models.Booking, error) {
	var request *models.TransporterRequest
	var booking *models.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockTransporterRequest(tx, id)
		if err != nil {
			return err
		}
		if request.TransporterID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the addressed transporter can accept")
		}
		if err := lifecycle.DecideRequest(request.Status, models.RequestStatusAccepted); err != nil {
			return err
		}

		product, err := lockProduct(tx, request.ProductID)
		if err != nil {
			return err
		}

		requestID := request.ID
		booking = &models.Booking{
			ProductID:            request.ProductID,
			FarmerID:             request.FarmerID,
			TransporterID:        request.TransporterID,
			TransporterRequestID: &requestID,
			FarmerDemandedCharge: request.FarmerDemandedCharge,
			TransportDate:        request.TransportDate,
			Status:               models.BookingStatusAccepted,
		}
		if err := bookTransport(tx, product, booking); err != nil {
			return err
		}

		request.Status = models.RequestStatusAccepted
		if err := tx.Model(request).Update("status", request.Status).Error; err != nil {
			return fmt.Errorf("failed to update transporter request: %w", err)
		}

		return notify(tx, request.FarmerID, models.NotificationTypeInfo,
			message(i18n.KeyNotifyTransporterRequestAccepted, product.TransporterName, product.Name), &booking.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	s.emitter.Emit(
		events.New(events.TransporterRequestAccepted, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
			"product_id": request.ProductID,
			"booking_id": booking.ID,
		}),
		events.New(events.BookingAccepted, events.AggregateBooking, booking.ID, actor.ID, map[string]interface{}{
			"product_id": booking.ProductID,
		}),
	)
	return request, booking, nil
}

func (s *TransporterRequestService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.TransporterRequest, error) {
	var request *models.TransporterRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockTransporterRequest(tx, id)
		if err != nil {
			return err
		}
		if request.TransporterID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the addressed transporter can reject")
		}
		if err := lifecycle.DecideRequest(request.Status, models.RequestStatusRejected); err != nil {
			return err
		}

		request.Status = models.RequestStatusRejected
		if err := tx.Model(request).Update("status", request.Status).Error; err != nil {
			return fmt.Errorf("failed to update transporter request: %w", err)
		}

		var product models.Product
		if err := tx.Select("name").First(&product, "id = ?", request.ProductID).Error; err != nil {
			return lookupError(err, "product")
		}
		return notify(tx, request.FarmerID, models.NotificationTypeAlert,
			message(i18n.KeyNotifyTransporterRequestRejected, displayName(tx, request.TransporterID), product.Name), &request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.TransporterRequestRejected, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
		"product_id": request.ProductID,
	}))
	return request, nil
}
