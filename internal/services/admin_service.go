// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

type AdminDashboardStats struct {
	UsersByRole       map[models.Role]int64          `json:"users_by_role"`
	ProductsByStatus  map[models.ProductStatus]int64 `json:"products_by_status"`
	NewProductsMonth  int64                          `json:"new_products_this_month"`
	PendingRequests   int64                          `json:"pending_requests"`
	LiveBookings      int64                          `json:"live_bookings"`
	PendingCancels    int64                          `json:"pending_cancellations"`
	MissingKilometers int64                          `json:"missing_kilometers"`
	QuantitySold      float64                        `json:"quantity_sold"`
}

// PurgeResult reports deleted rows per table.
type PurgeResult struct {
	Total   int64            `json:"total_records_deleted"`
	ByTable map[string]int64 `json:"deleted_by_table"`
}

type AuditLogFilter struct {
	utils.PaginationParams
	ActorID      string
	ResourceType string
	Since        *time.Time
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats := &AdminDashboardStats{
		UsersByRole:      map[models.Role]int64{},
		ProductsByStatus: map[models.ProductStatus]int64{},
	}

	var roleCounts []struct {
		Role  models.Role
		Count int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roleCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.Role] = rc.Count
	}

	var statusCounts []struct {
		Status models.ProductStatus
		Count  int64
	}
	if err := db.Model(&models.Product{}).Select("status, COUNT(*) AS count").Group("status").Scan(&statusCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	for _, sc := range statusCounts {
		stats.ProductsByStatus[sc.Status] = sc.Count
	}

	db.Model(&models.Product{}).Where("created_at >= ?", monthStart).Count(&stats.NewProductsMonth)

	var sellerPending, transporterPending int64
	db.Model(&models.SellerRequest{}).Where("status = ?", models.RequestStatusPending).Count(&sellerPending)
	db.Model(&models.TransporterRequest{}).Where("status = ?", models.RequestStatusPending).Count(&transporterPending)
	stats.PendingRequests = sellerPending + transporterPending

	db.Model(&models.Booking{}).
		Where("status IN ?", []models.BookingStatus{models.BookingStatusPending, models.BookingStatusAccepted, models.BookingStatusPickedUp}).
		Count(&stats.LiveBookings)
	db.Model(&models.Booking{}).Where("cancellation_status = ?", models.CancellationStatusPending).Count(&stats.PendingCancels)
	db.Model(&models.Booking{}).
		Where("status = ? AND kilometers IS NULL", models.BookingStatusTransported).
		Count(&stats.MissingKilometers)

	db.Model(&models.JourneyStep{}).
		Where("type = ? AND status IN ?", models.JourneyStepSeller,
			[]models.JourneyStepStatus{models.StepStatusSold, models.StepStatusPartiallySold}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&stats.QuantitySold)

	return stats, nil
}

// ClearAllData wipes every marketplace table in one transaction. Admin
// accounts and the audit trail survive.
func (s *AdminService) ClearAllData(ctx context.Context, actor Actor) (*PurgeResult, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin only")
	}

	result := &PurgeResult{ByTable: map[string]int64{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			model interface{}
			where string
			args  []interface{}
		}{
			{"bookings", &models.Booking{}, "1 = 1", nil},
			{"notifications", &models.Notification{}, "1 = 1", nil},
			{"seller_requests", &models.SellerRequest{}, "1 = 1", nil},
			{"transporter_requests", &models.TransporterRequest{}, "1 = 1", nil},
			{"journey_steps", &models.JourneyStep{}, "1 = 1", nil},
			{"products", &models.Product{}, "1 = 1", nil},
			{"users", &models.User{}, "role <> ?", []interface{}{models.RoleAdmin}},
		}
		for _, step := range steps {
			res := tx.Where(step.where, step.args...).Delete(step.model)
			if res.Error != nil {
				return fmt.Errorf("failed to clear %s: %w", step.table, res.Error)
			}
			result.ByTable[step.table] = res.RowsAffected
			result.Total += res.RowsAffected
		}

		return createAuditLog(tx, actor, "clear_all_data", "database", "", result.ByTable)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CleanupOrphanedData removes rows whose product, or for notifications whose
// related record, no longer exists.
func (s *AdminService) CleanupOrphanedData(ctx context.Context, actor Actor) (*PurgeResult, error) {
	if !actor.IsAdmin() {
		return nil, forbidden("admin only")
	}

	const missingProduct = "NOT EXISTS (SELECT 1 FROM products p WHERE p.id = %s.product_id)"

	result := &PurgeResult{ByTable: map[string]int64{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			where string
			model interface{}
		}{
			{"seller_requests", fmt.Sprintf(missingProduct, "seller_requests"), &models.SellerRequest{}},
			{"transporter_requests", fmt.Sprintf(missingProduct, "transporter_requests"), &models.TransporterRequest{}},
			{"bookings", fmt.Sprintf(missingProduct, "bookings"), &models.Booking{}},
			{"journey_steps", fmt.Sprintf(missingProduct, "journey_steps"), &models.JourneyStep{}},
			{"notifications", `related_id IS NOT NULL
				AND NOT EXISTS (SELECT 1 FROM products WHERE id = notifications.related_id)
				AND NOT EXISTS (SELECT 1 FROM bookings WHERE id = notifications.related_id)
				AND NOT EXISTS (SELECT 1 FROM seller_requests WHERE id = notifications.related_id)
				AND NOT EXISTS (SELECT 1 FROM transporter_requests WHERE id = notifications.related_id)`, &models.Notification{}},
		}
		for _, step := range steps {
			res := tx.Where(step.where).Delete(step.model)
			if res.Error != nil {
				return fmt.Errorf("failed to clean %s: %w", step.table, res.Error)
			}
			result.ByTable[step.table] = res.RowsAffected
			result.Total += res.RowsAffected
		}

		return createAuditLog(tx, actor, "cleanup_orphaned_data", "database", "", result.ByTable)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AdminService) ListAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}
	if filter.Since != nil {
		query = query.Where("created_at >= ?", *filter.Since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = query.Scopes(
		utils.SortBy(filter.PaginationParams, "created_at", "action", "resource_type", "status_code"),
		utils.Paginate(filter.PaginationParams),
	)

	var logs []models.AuditLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

func createAuditLog(tx *gorm.DB, actor Actor, action, resourceType, resourceID string, body map[string]int64) error {
	payload := models.JSONB{}
	for k, v := range body {
		payload[k] = v
	}
	entry := &models.AuditLog{
		ActorID:      actor.ID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestBody:  payload,
		StatusCode:   200,
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
