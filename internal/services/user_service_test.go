package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

func TestParseRole(t *testing.T) {
	role, err := parseRole("TRANSPORTER")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTransporter, role)

	_, err = parseRole("farmer")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizeRoleDataDropsUnknownKeys(t *testing.T) {
	data, err := normalizeRoleData(models.RoleSeller, map[string]interface{}{
		"shopName": "Green Grocers",
		"address":  "12 Market Road",
		"isAdmin":  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Green Grocers", data["shopName"])
	assert.NotContains(t, data, "isAdmin")
}

func TestNormalizeRoleDataValidatesPerRole(t *testing.T) {
	_, err := normalizeRoleData(models.RoleFarmer, map[string]interface{}{"name": "Ravi"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = normalizeRoleData(models.RoleTransporter, map[string]interface{}{
		"vehicleType":   "truck",
		"vehicleNumber": "not a plate",
		"license":       "DL-1",
	})
	assert.ErrorIs(t, err, ErrValidation)

	data, err := normalizeRoleData(models.RoleTransporter, map[string]interface{}{
		"vehicleType":         "truck",
		"vehicleNumber":       "TN 01 AB 1234",
		"license":             "DL-1",
		"expectedChargePerKm": 12.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 12.5, data["expectedChargePerKm"])

	_, err = normalizeRoleData(models.RoleTransporter, map[string]interface{}{
		"vehicleType":         "truck",
		"vehicleNumber":       "TN 01 AB 1234",
		"license":             "DL-1",
		"expectedChargePerKm": "cheap",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestActorRequire(t *testing.T) {
	assert.NoError(t, Actor{ID: "f", Role: models.RoleFarmer}.require(models.RoleFarmer))
	assert.NoError(t, Actor{ID: "a", Role: models.RoleAdmin}.require(models.RoleFarmer))
	assert.ErrorIs(t, Actor{ID: "s", Role: models.RoleSeller}.require(models.RoleFarmer), ErrForbidden)
}

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := lookupError(errors.New("boom"), "product")
	assert.NotErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.ErrorAs(t, notFound("booking"), &nf)
	assert.Equal(t, "booking", nf.Resource)
	assert.ErrorIs(t, nf, ErrNotFound)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"organic", "rice"}, []string(normalizeTags([]string{" Organic", "rice", "ORGANIC", "  "})))
	assert.Empty(t, normalizeTags(nil))
}

func TestSaveRoleMustMatchTokenRole(t *testing.T) {
	svc := NewUserService(nil)
	req := &SaveRoleRequest{RoleData: map[string]interface{}{"shopName": "Fresh Mart", "address": "Chennai"}}

	_, err := svc.SaveRole(context.Background(), Actor{ID: "farmer-1", Role: models.RoleFarmer}, "SELLER", req)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SaveRole(context.Background(), Actor{ID: "seller-1", Role: models.RoleSeller}, "ADMIN", &SaveRoleRequest{
		RoleData: map[string]interface{}{},
	})
	assert.ErrorIs(t, err, ErrForbidden)
}
