// internal/services/seller_request_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/lifecycle"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type SellerRequestService struct {
	db      *gorm.DB
	emitter *events.Emitter
}

type CreateSellerRequestRequest struct {
	ProductID    uuid.UUID `json:"product_id" validate:"required"`
	SellerID     string    `json:"seller_id" validate:"required,max=128"`
	FarmerPrice  float64   `json:"farmer_price" validate:"gt=0,lte=9999999999.99"`
	SellingPrice float64   `json:"selling_price" validate:"gt=0,lte=9999999999.99"`
}

type StatusUpdateRequest struct {
	Status models.RequestStatus `json:"status" validate:"required,oneof=ACCEPTED REJECTED"`
}

type RequestFilter struct {
	ProductID      *uuid.UUID
	FarmerID       string
	CounterpartyID string
	Status         models.RequestStatus
}

func NewSellerRequestService(db *gorm.DB, emitter *events.Emitter) *SellerRequestService {
	return &SellerRequestService{db: db, emitter: emitter}
}

func (s *SellerRequestService) Create(ctx context.Context, actor Actor, req *CreateSellerRequestRequest) (*models.SellerRequest, error) {
	if err := actor.require(models.RoleFarmer); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	request := &models.SellerRequest{
		ProductID:    req.ProductID,
		SellerID:     req.SellerID,
		FarmerPrice:  req.FarmerPrice,
		SellingPrice: req.SellingPrice,
		Status:       models.RequestStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, req.ProductID)
		if err != nil {
			return err
		}
		if product.FarmerID != actor.ID && !actor.IsAdmin() {
			return forbidden("product belongs to another farmer")
		}
		if product.HasSeller() || product.Status != models.ProductStatusCreated {
			return fmt.Errorf("%w: product is already %s", ErrInvalidTransition, product.Status)
		}

		seller, err := findUser(tx, req.SellerID)
		if err != nil {
			return err
		}
		if seller.Role != models.RoleSeller {
			return fmt.Errorf("%w: user %s is not a seller", ErrValidation, req.SellerID)
		}

		// Fast path for a clear error; the partial unique index settles races.
		var active int64
		if err := tx.Model(&models.SellerRequest{}).
			Where("product_id = ? AND seller_id = ? AND status IN ?", req.ProductID, req.SellerID,
				[]models.RequestStatus{models.RequestStatusPending, models.RequestStatusAccepted}).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to check existing requests: %w", err)
		}
		if active > 0 {
			return ErrDuplicateRequest
		}

		request.FarmerID = product.FarmerID
		if err := tx.Create(request).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateRequest
			}
			return fmt.Errorf("failed to create seller request: %w", err)
		}

		return notify(tx, req.SellerID, models.NotificationTypeInfo,
			message(i18n.KeyNotifySellerRequestCreated, displayName(tx, product.FarmerID), product.Name), &request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.SellerRequestCreated, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
		"product_id":    request.ProductID,
		"seller_id":     request.SellerID,
		"selling_price": request.SellingPrice,
	}))
	return request, nil
}

func (s *SellerRequestService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.SellerRequest, error) {
	var request models.SellerRequest
	if err := s.db.WithContext(ctx).Preload("Product").First(&request, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "seller_request")
	}
	if request.FarmerID != actor.ID && request.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, forbidden("not a party to this request")
	}
	return &request, nil
}

func (s *SellerRequestService) List(ctx context.Context, filter RequestFilter) ([]models.SellerRequest, error) {
	query := s.db.WithContext(ctx).Model(&models.SellerRequest{}).Preload("Product")
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.FarmerID != "" {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.CounterpartyID != "" {
		query = query.Where("seller_id = ?", filter.CounterpartyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var requests []models.SellerRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch seller requests: %w", err)
	}
	return requests, nil
}

// Decide dispatches a status update to Accept or Reject.
func (s *SellerRequestService) Decide(ctx context.Context, actor Actor, id uuid.UUID, req *StatusUpdateRequest) (*models.SellerRequest, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}
	if req.Status == models.RequestStatusAccepted {
		return s.Accept(ctx, actor, id)
	}
	return s.Reject(ctx, actor, id)
}

// Accept assigns the batch to the seller. Request and product rows are locked
// so two sellers cannot both win the same batch.
func (s *SellerRequestService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.SellerRequest, error) {
	var request *models.SellerRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockSellerRequest(tx, id)
		if err != nil {
			return err
		}
		if request.SellerID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the addressed seller can accept")
		}
		if err := lifecycle.DecideRequest(request.Status, models.RequestStatusAccepted); err != nil {
			return err
		}

		product, err := lockProduct(tx, request.ProductID)
		if err != nil {
			return err
		}

		seller, err := findUser(tx, request.SellerID)
		if err != nil {
			return err
		}
		if err := lifecycle.AssignSeller(product, lifecycle.SellerAssignment{
			SellerID:     seller.ID,
			SellerName:   seller.DisplayName(),
			Location:     seller.Location(),
			FarmerPrice:  request.FarmerPrice,
			SellingPrice: request.SellingPrice,
		}); err != nil {
			return err
		}

		request.Status = models.RequestStatusAccepted
		if err := tx.Model(request).Update("status", request.Status).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: product already has an accepted seller", ErrConflict)
			}
			return fmt.Errorf("failed to update seller request: %w", err)
		}

		if err := tx.Model(product).Updates(map[string]interface{}{
			"status":          product.Status,
			"seller_id":       product.SellerID,
			"seller_name":     product.SellerName,
			"seller_location": product.SellerLocation,
			"seller_price":    product.SellerPrice,
			"farmer_price":    product.FarmerPrice,
		}).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if err := appendStep(tx, &models.JourneyStep{
			ProductID:   product.ID,
			Type:        models.JourneyStepSeller,
			Status:      models.StepStatusAccepted,
			ActorID:     seller.ID,
			ActorName:   product.SellerName,
			Location:    product.SellerLocation,
			Price:       floatPtr(product.SellerPrice),
			Description: message(i18n.KeyJourneySellerAssigned, product.SellerName),
		}); err != nil {
			return err
		}

		return notify(tx, request.FarmerID, models.NotificationTypeInfo,
			message(i18n.KeyNotifySellerRequestAccepted, product.SellerName, product.Name), &request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.SellerRequestAccepted, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
		"product_id": request.ProductID,
		"seller_id":  request.SellerID,
	}))
	return request, nil
}

func (s *SellerRequestService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.SellerRequest, error) {
	var request *models.SellerRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		request, err = lockSellerRequest(tx, id)
		if err != nil {
			return err
		}
		if request.SellerID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the addressed seller can reject")
		}
		if err := lifecycle.DecideRequest(request.Status, models.RequestStatusRejected); err != nil {
			return err
		}

		request.Status = models.RequestStatusRejected
		if err := tx.Model(request).Update("status", request.Status).Error; err != nil {
			return fmt.Errorf("failed to update seller request: %w", err)
		}

		var product models.Product
		if err := tx.Select("name").First(&product, "id = ?", request.ProductID).Error; err != nil {
			return lookupError(err, "product")
		}
		return notify(tx, request.FarmerID, models.NotificationTypeAlert,
			message(i18n.KeyNotifySellerRequestRejected, displayName(tx, request.SellerID), product.Name), &request.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.SellerRequestRejected, events.AggregateRequest, request.ID, actor.ID, map[string]interface{}{
		"product_id": request.ProductID,
	}))
	return request, nil
}
