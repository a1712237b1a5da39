// internal/services/revenue_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/revenue"
)

// RevenueService loads the records a revenue summary is derived from. It
// never writes.
type RevenueService struct {
	db *gorm.DB
}

func NewRevenueService(db *gorm.DB) *RevenueService {
	return &RevenueService{db: db}
}

func (s *RevenueService) Summary(ctx context.Context, actor Actor, rawRole, userID string) (*revenue.Summary, error) {
	role, err := parseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, forbidden("cannot read another user's revenue")
	}

	db := s.db.WithContext(ctx)
	var summary revenue.Summary

	switch role {
	case models.RoleFarmer:
		products, requests, err := s.load(db, "farmer_id", userID)
		if err != nil {
			return nil, err
		}
		summary = revenue.Farmer(userID, products, requests)
	case models.RoleSeller:
		products, requests, err := s.load(db, "seller_id", userID)
		if err != nil {
			return nil, err
		}
		summary = revenue.Seller(userID, products, requests)
	case models.RoleTransporter:
		summary, err = s.transporter(db, userID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: no revenue for role %s", ErrValidation, role)
	}

	return &summary, nil
}

// load fetches the products owned or sold by userID with their journeys, and
// the seller requests on the same side.
func (s *RevenueService) load(db *gorm.DB, column, userID string) ([]models.Product, []models.SellerRequest, error) {
	var products []models.Product
	if err := db.Preload("Journey", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("sequence ASC")
	}).Where(column+" = ?", userID).Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	var requests []models.SellerRequest
	if err := db.Where(column+" = ? AND status = ?", userID, models.RequestStatusAccepted).
		Find(&requests).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch seller requests: %w", err)
	}
	return products, requests, nil
}

func (s *RevenueService) transporter(db *gorm.DB, userID string) (revenue.Summary, error) {
	user, err := findUser(db, userID)
	if err != nil {
		return revenue.Summary{}, err
	}

	var bookings []models.Booking
	if err := db.Where("transporter_id = ? AND status = ?", userID, models.BookingStatusTransported).
		Find(&bookings).Error; err != nil {
		return revenue.Summary{}, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	names := make(map[uuid.UUID]string, len(bookings))
	if len(bookings) > 0 {
		ids := make([]uuid.UUID, 0, len(bookings))
		for _, b := range bookings {
			ids = append(ids, b.ProductID)
		}
		var products []models.Product
		if err := db.Select("id", "name").Where("id IN ?", ids).Find(&products).Error; err != nil {
			return revenue.Summary{}, fmt.Errorf("failed to fetch products: %w", err)
		}
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}

	return revenue.Transporter(userID, user.ChargePerKm(), bookings, names), nil
}
