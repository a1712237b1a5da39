// internal/services/store.go
package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

// Row helpers shared by the lifecycle services. All of them expect to run
// inside a transaction.

var forUpdate = clause.Locking{Strength: "UPDATE"}

func lockProduct(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.Clauses(forUpdate).First(&product, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "product")
	}
	return &product, nil
}

func lockSellerRequest(tx *gorm.DB, id uuid.UUID) (*models.SellerRequest, error) {
	var req models.SellerRequest
	if err := tx.Clauses(forUpdate).First(&req, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "seller_request")
	}
	return &req, nil
}

func lockTransporterRequest(tx *gorm.DB, id uuid.UUID) (*models.TransporterRequest, error) {
	var req models.TransporterRequest
	if err := tx.Clauses(forUpdate).First(&req, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "transporter_request")
	}
	return &req, nil
}

func lockBooking(tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.Clauses(forUpdate).First(&booking, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "booking")
	}
	return &booking, nil
}

func findUser(tx *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		return nil, lookupError(err, "user")
	}
	return &user, nil
}

// displayName falls back to the raw id when the user has not onboarded.
func displayName(tx *gorm.DB, id string) string {
	if id == "" {
		return ""
	}
	user, err := findUser(tx, id)
	if err != nil {
		return id
	}
	if name := user.DisplayName(); name != "" {
		return name
	}
	return id
}

func liveBookingCount(tx *gorm.DB, productID uuid.UUID, statuses ...models.BookingStatus) (int64, error) {
	if len(statuses) == 0 {
		statuses = []models.BookingStatus{models.BookingStatusPending, models.BookingStatusAccepted, models.BookingStatusPickedUp}
	}
	var count int64
	err := tx.Model(&models.Booking{}).
		Where("product_id = ? AND status IN ?", productID, statuses).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to check bookings: %w", err)
	}
	return count, nil
}

// appendStep inserts the next journey step for a product. The product row
// must already be locked so sequences cannot collide.
func appendStep(tx *gorm.DB, step *models.JourneyStep) error {
	var last int
	if err := tx.Model(&models.JourneyStep{}).
		Where("product_id = ?", step.ProductID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return fmt.Errorf("failed to read journey: %w", err)
	}
	step.Sequence = last + 1
	if err := tx.Create(step).Error; err != nil {
		return fmt.Errorf("failed to append journey step: %w", err)
	}
	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}
