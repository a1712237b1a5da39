// internal/models/user.go
package models

import (
	"encoding/json"
	"time"
)

// User mirrors an identity issued by the external provider. The id is the
// provider's subject and is never generated here.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:128"`
	Email     string    `json:"email,omitempty" gorm:"size:255;index"`
	Phone     string    `json:"phone,omitempty" gorm:"size:32"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	RoleData  JSONB     `json:"role_data" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Role data payloads, stored in User.RoleData.
type FarmerData struct {
	Name               string `json:"name" validate:"required,min=2,max=255"`
	Location           string `json:"location" validate:"required,max=255"`
	AuthorizedDocument string `json:"authorizedDocument,omitempty" validate:"omitempty,max=512"`
}

type SellerData struct {
	ShopName string `json:"shopName" validate:"required,min=2,max=255"`
	Address  string `json:"address" validate:"required,max=512"`
	Location string `json:"location,omitempty" validate:"omitempty,max=255"`
}

type TransporterData struct {
	Name                string  `json:"name,omitempty" validate:"omitempty,max=255"`
	VehicleType         string  `json:"vehicleType" validate:"required,max=50"`
	VehicleNumber       string  `json:"vehicleNumber" validate:"required,vehicle_number"`
	License             string  `json:"license" validate:"required,max=64"`
	ExpectedChargePerKm float64 `json:"expectedChargePerKm" validate:"gte=0"`
	Location            string  `json:"location,omitempty" validate:"omitempty,max=255"`
}

// DecodeRoleData converts the stored JSONB into the typed payload for dst.
func (u *User) DecodeRoleData(dst interface{}) error {
	raw, err := json.Marshal(u.RoleData)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// DisplayName picks the most human name the role data carries.
func (u *User) DisplayName() string {
	for _, key := range []string{"name", "shopName"} {
		if v, ok := u.RoleData[key].(string); ok && v != "" {
			return v
		}
	}
	return u.Email
}

// Location returns the role data location, falling back to a seller's address.
func (u *User) Location() string {
	for _, key := range []string{"location", "address"} {
		if v, ok := u.RoleData[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ChargePerKm is the transporter's declared rate, zero when unset.
func (u *User) ChargePerKm() float64 {
	switch v := u.RoleData["expectedChargePerKm"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}
