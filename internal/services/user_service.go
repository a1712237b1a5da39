// internal/services/user_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

// SaveRoleRequest registers or refreshes the role profile of a user. UserID
// is honoured only for admins; everyone else saves their own profile.
type SaveRoleRequest struct {
	UserID   string                 `json:"user_id,omitempty" validate:"omitempty,max=128"`
	Email    string                 `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string                 `json:"phone,omitempty" validate:"omitempty,max=32"`
	RoleData map[string]interface{} `json:"role_data" validate:"required"`
}

type RoleInfo struct {
	UserID   string       `json:"user_id"`
	Role     models.Role  `json:"role"`
	RoleData models.JSONB `json:"role_data"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func parseRole(raw string) (models.Role, error) {
	role := models.Role(raw)
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
	}
	return role, nil
}

// normalizeRoleData round-trips the payload through the typed struct for the
// role so that unknown keys are dropped and required fields are enforced.
func normalizeRoleData(role models.Role, data map[string]interface{}) (models.JSONB, error) {
	var typed interface{}
	switch role {
	case models.RoleFarmer:
		typed = &models.FarmerData{}
	case models.RoleSeller:
		typed = &models.SellerData{}
	case models.RoleTransporter:
		typed = &models.TransporterData{}
	default:
		return models.JSONB(data), nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: role data is not an object", ErrValidation)
	}
	if err := json.Unmarshal(raw, typed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := utils.ValidateStruct(typed); err != nil {
		return nil, validationFailed(err)
	}

	raw, err = json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	out := models.JSONB{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findUser(s.db.WithContext(ctx), id)
}

func (s *UserService) ListByRole(ctx context.Context, rawRole string) ([]models.User, error) {
	role, err := parseRole(rawRole)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

func (s *UserService) GetRole(ctx context.Context, userID string) (*RoleInfo, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RoleInfo{UserID: user.ID, Role: user.Role, RoleData: user.RoleData}, nil
}

// SaveRole creates the user's profile for role, or replaces its role data if
// the user already holds that role. A user holds exactly one role.
func (s *UserService) SaveRole(ctx context.Context, actor Actor, rawRole string, req *SaveRoleRequest) (*models.User, error) {
	role, err := parseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}
	if role == models.RoleAdmin && !actor.IsAdmin() {
		return nil, forbidden("admin role cannot be self-assigned")
	}
	// The stored role must agree with the token's role claim, which is what
	// every role gate checks.
	if !actor.IsAdmin() && role != actor.Role {
		return nil, forbidden("token role %s cannot register as %s", actor.Role, role)
	}

	userID := actor.ID
	if actor.IsAdmin() && req.UserID != "" {
		userID = req.UserID
	}

	data, err := normalizeRoleData(role, req.RoleData)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(forUpdate).First(&user, "id = ?", userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = models.User{ID: userID, Email: req.Email, Phone: req.Phone, Role: role, RoleData: data}
			if err := tx.Create(&user).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: user registered concurrently", ErrConflict)
				}
				return fmt.Errorf("failed to create user: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("database error: %w", err)
		}

		if user.Role != role {
			return fmt.Errorf("%w: user already holds role %s", ErrConflict, user.Role)
		}
		return s.applyProfile(tx, &user, req, data)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateRole replaces the role data of an existing user. Only the user or an
// admin may do so.
func (s *UserService) UpdateRole(ctx context.Context, actor Actor, rawRole, userID string, req *SaveRoleRequest) (*models.User, error) {
	role, err := parseRole(rawRole)
	if err != nil {
		return nil, err
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, forbidden("cannot edit another user's profile")
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationFailed(err)
	}

	data, err := normalizeRoleData(role, req.RoleData)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(forUpdate).First(&user, "id = ?", userID).Error; err != nil {
			return lookupError(err, "user")
		}
		if user.Role != role {
			return fmt.Errorf("%w: user holds role %s", ErrConflict, user.Role)
		}
		return s.applyProfile(tx, &user, req, data)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) applyProfile(tx *gorm.DB, user *models.User, req *SaveRoleRequest, data models.JSONB) error {
	updates := map[string]interface{}{"role_data": data}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if err := tx.Model(user).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	user.RoleData = data
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	return nil
}
