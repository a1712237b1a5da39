// internal/services/product_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/i18n"
	"github.com/Mohit-R-04/FarmToMarket/internal/lifecycle"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type ProductService struct {
	db              *gorm.DB
	emitter         *events.Emitter
	frontendBaseURL string
}

// Quantities fit decimal(12,3).
type CreateProductRequest struct {
	Name               string   `json:"name" validate:"required,min=2,max=255"`
	Description        string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity           float64  `json:"quantity" validate:"gt=0,lte=999999999.999"`
	Unit               string   `json:"unit" validate:"required,quantity_unit"`
	ProductionLocation string   `json:"production_location" validate:"required,max=255"`
	Tags               []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=40"`
}

// UpdateProductRequest carries descriptive fields only. Lifecycle fields
// change through requests, bookings and sales.
type UpdateProductRequest struct {
	Name               string   `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description        *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity           float64  `json:"quantity,omitempty" validate:"omitempty,gt=0,lte=999999999.999"`
	Unit               string   `json:"unit,omitempty" validate:"omitempty,quantity_unit"`
	ProductionLocation string   `json:"production_location,omitempty" validate:"omitempty,max=255"`
	Tags               []string `json:"tags,omitempty" validate:"omitempty,max=10,dive,min=1,max=40"`
}

type RecordSaleRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0,lte=999999999.999"`
	Reason   string  `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ProductFilter struct {
	utils.PaginationParams
	FarmerID      string
	SellerID      string
	TransporterID string
	Status        models.ProductStatus
	Tag           string
}

type DeleteSummary struct {
	ProductID           uuid.UUID `json:"product_id"`
	JourneySteps        int64     `json:"journey_steps"`
	SellerRequests      int64     `json:"seller_requests"`
	TransporterRequests int64     `json:"transporter_requests"`
	Bookings            int64     `json:"bookings"`
	Notifications       int64     `json:"notifications"`
}

func NewProductService(db *gorm.DB, emitter *events.Emitter, frontendBaseURL string) *ProductService {
	return &ProductService{
		db:              db,
		emitter:         emitter,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

// QRCode is the public trace page encoded into the batch's label.
func (s *ProductService) QRCode(id uuid.UUID) string {
	return fmt.Sprintf("%s/product/%s", s.frontendBaseURL, id)
}

func (s *ProductService) CreateProduct(ctx context.Context, actor Actor, req *CreateProductRequest) (*models.Product, error) {
	if err := actor.require(models.RoleFarmer); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	product := &models.Product{
		FarmerID:           actor.ID,
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		Quantity:           req.Quantity,
		OriginalQuantity:   req.Quantity,
		Unit:               strings.ToLower(req.Unit),
		ProductionLocation: req.ProductionLocation,
		CurrentLocation:    req.ProductionLocation,
		Tags:               normalizeTags(req.Tags),
		Status:             models.ProductStatusCreated,
	}
	product.ID = uuid.New()
	product.QRCode = s.QRCode(product.ID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product.FarmerName = displayName(tx, actor.ID)

		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return appendStep(tx, &models.JourneyStep{
			ProductID:   product.ID,
			Type:        models.JourneyStepLocation,
			Status:      models.StepStatusCompleted,
			ActorID:     actor.ID,
			ActorName:   product.FarmerName,
			Location:    product.ProductionLocation,
			Quantity:    floatPtr(product.Quantity),
			Description: message(i18n.KeyJourneyProduced, product.ProductionLocation),
		})
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.ProductCreated, events.AggregateProduct, product.ID, actor.ID, map[string]interface{}{
		"name":     product.Name,
		"quantity": product.Quantity,
		"unit":     product.Unit,
	}))

	return s.GetProduct(ctx, product.ID)
}

func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).
		Preload("Journey", func(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC") }).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "product")
	}
	return &product, nil
}

func (s *ProductService) GetJourney(ctx context.Context, id uuid.UUID) ([]models.JourneyStep, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count == 0 {
		return nil, notFound("product")
	}

	var steps []models.JourneyStep
	if err := s.db.WithContext(ctx).Where("product_id = ?", id).Order("sequence ASC").Find(&steps).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch journey: %w", err)
	}
	return steps, nil
}

func (s *ProductService) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if filter.FarmerID != "" {
		query = query.Where("farmer_id = ?", filter.FarmerID)
	}
	if filter.SellerID != "" {
		query = query.Where("seller_id = ?", filter.SellerID)
	}
	if filter.TransporterID != "" {
		query = query.Where("transporter_id = ?", filter.TransporterID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", strings.ToLower(filter.Tag))
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(production_location) LIKE ?", searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Scopes(
		utils.SortBy(filter.PaginationParams, "created_at", "updated_at", "name", "quantity", "status"),
		utils.Paginate(filter.PaginationParams),
	)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, id)
		if err != nil {
			return err
		}
		if product.FarmerID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the owning farmer can edit a product")
		}
		if !lifecycle.Editable(product) {
			return fmt.Errorf("%w: product is %s and can no longer be edited", ErrInvalidTransition, product.Status)
		}

		// Prepare updates
		updates := make(map[string]interface{})
		if req.Name != "" {
			updates["name"] = strings.TrimSpace(req.Name)
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Quantity > 0 {
			updates["quantity"] = req.Quantity
			updates["original_quantity"] = req.Quantity
		}
		if req.Unit != "" {
			updates["unit"] = strings.ToLower(req.Unit)
		}
		if req.ProductionLocation != "" {
			updates["production_location"] = req.ProductionLocation
			updates["current_location"] = req.ProductionLocation
		}
		if req.Tags != nil {
			updates["tags"] = normalizeTags(req.Tags)
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.ProductUpdated, events.AggregateProduct, id, actor.ID, nil))
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a batch together with everything that references it.
// A batch on the road cannot be deleted.
func (s *ProductService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) (*DeleteSummary, error) {
	summary := &DeleteSummary{ProductID: id}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, id)
		if err != nil {
			return err
		}
		if product.FarmerID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the owning farmer can delete a product")
		}

		onTheRoad, err := liveBookingCount(tx, id, models.BookingStatusAccepted, models.BookingStatusPickedUp)
		if err != nil {
			return err
		}
		if onTheRoad > 0 {
			return fmt.Errorf("%w: product has an active transport booking", ErrConflict)
		}

		related := []uuid.UUID{id}
		for _, model := range []interface{}{&models.SellerRequest{}, &models.TransporterRequest{}, &models.Booking{}} {
			var ids []uuid.UUID
			if err := tx.Model(model).Where("product_id = ?", id).Pluck("id", &ids).Error; err != nil {
				return fmt.Errorf("failed to collect related records: %w", err)
			}
			related = append(related, ids...)
		}

		res := tx.Where("related_id IN ?", related).Delete(&models.Notification{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete notifications: %w", res.Error)
		}
		summary.Notifications = res.RowsAffected

		steps := []struct {
			model interface{}
			count *int64
		}{
			{&models.JourneyStep{}, &summary.JourneySteps},
			{&models.SellerRequest{}, &summary.SellerRequests},
			{&models.TransporterRequest{}, &summary.TransporterRequests},
			{&models.Booking{}, &summary.Bookings},
		}
		for _, step := range steps {
			res := tx.Where("product_id = ?", id).Delete(step.model)
			if res.Error != nil {
				return fmt.Errorf("failed to delete related records: %w", res.Error)
			}
			*step.count = res.RowsAffected
		}

		if err := tx.Delete(product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.ProductDeleted, events.AggregateProduct, id, actor.ID, map[string]interface{}{
		"bookings":        summary.Bookings,
		"seller_requests": summary.SellerRequests,
	}))
	return summary, nil
}

// RecordSale decrements stock and appends the sale step in one transaction.
func (s *ProductService) RecordSale(ctx context.Context, actor Actor, productID uuid.UUID, req *RecordSaleRequest) (*models.Product, error) {
	if err := actor.require(models.RoleSeller); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	var sale lifecycle.Sale
	var product *models.Product

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = lockProduct(tx, productID)
		if err != nil {
			return err
		}
		if product.SellerID != actor.ID && !actor.IsAdmin() {
			return forbidden("only the assigned seller can record sales")
		}

		// Selling straight from the farm is allowed only while no transport is arranged.
		if product.Status == models.ProductStatusAssignedToSeller {
			live, err := liveBookingCount(tx, productID)
			if err != nil {
				return err
			}
			if live > 0 {
				return fmt.Errorf("%w: product has a transport booking", ErrConflict)
			}
		}

		sale, err = lifecycle.ApplySale(product, req.Quantity)
		if err != nil {
			return err
		}

		if err := tx.Model(product).Updates(map[string]interface{}{
			"quantity": product.Quantity,
			"status":   product.Status,
		}).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		sold := fmt.Sprintf("%g %s", sale.Quantity, product.Unit)
		description := message(i18n.KeyJourneySold, sold)
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			description += ": " + reason
		}
		seller := displayName(tx, product.SellerID)

		if err := appendStep(tx, &models.JourneyStep{
			ProductID:   product.ID,
			Type:        models.JourneyStepSeller,
			Status:      sale.StepStatus,
			ActorID:     product.SellerID,
			ActorName:   seller,
			Location:    product.SellerLocation,
			Quantity:    floatPtr(sale.Quantity),
			Price:       floatPtr(sale.UnitPrice),
			Description: description,
		}); err != nil {
			return err
		}

		return notify(tx, product.FarmerID, models.NotificationTypeInfo,
			message(i18n.KeyNotifyProductSold, seller, sold, product.Name), &product.ID)
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(events.New(events.ProductSold, events.AggregateProduct, productID, actor.ID, map[string]interface{}{
		"quantity":   sale.Quantity,
		"remaining":  sale.Remaining,
		"unit_price": sale.UnitPrice,
		"sold_out":   sale.FullySoldOut,
	}))

	return s.GetProduct(ctx, productID)
}

// normalizeTags lower-cases and de-duplicates tags, keeping their order.
func normalizeTags(tags []string) pq.StringArray {
	out := pq.StringArray{}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
