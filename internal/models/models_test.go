package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBRoundTripThroughDriver(t *testing.T) {
	src := JSONB{"name": "Ravi", "expectedChargePerKm": 10.0}
	v, err := src.Value()
	require.NoError(t, err)

	var dst JSONB
	require.NoError(t, dst.Scan(v))
	assert.Equal(t, "Ravi", dst["name"])

	var fromString JSONB
	require.NoError(t, fromString.Scan(`{"shopName":"Fresh Mart"}`))
	assert.Equal(t, "Fresh Mart", fromString["shopName"])
}

func TestUserRoleDataHelpers(t *testing.T) {
	transporter := User{Role: RoleTransporter, RoleData: JSONB{"name": "Kumar", "expectedChargePerKm": 10.0}}
	assert.Equal(t, "Kumar", transporter.DisplayName())
	assert.Equal(t, 10.0, transporter.ChargePerKm())

	seller := User{Role: RoleSeller, Email: "s@example.com", RoleData: JSONB{"shopName": "Fresh Mart", "address": "Madurai"}}
	assert.Equal(t, "Fresh Mart", seller.DisplayName())
	assert.Equal(t, "Madurai", seller.Location())

	var data SellerData
	require.NoError(t, seller.DecodeRoleData(&data))
	assert.Equal(t, "Madurai", data.Address)

	empty := User{Email: "x@example.com"}
	assert.Equal(t, "x@example.com", empty.DisplayName())
	assert.Zero(t, empty.ChargePerKm())
}

func TestBookingIsLive(t *testing.T) {
	for status, live := range map[BookingStatus]bool{
		BookingStatusPending:     true,
		BookingStatusAccepted:    true,
		BookingStatusPickedUp:    true,
		BookingStatusTransported: false,
		BookingStatusCancelled:   false,
		BookingStatusRejected:    false,
	} {
		b := Booking{Status: status}
		assert.Equal(t, live, b.IsLive(), status)
	}
}

func TestNotificationIsUnread(t *testing.T) {
	assert.True(t, (&Notification{Status: NotificationStatusUnread}).IsUnread())
	assert.True(t, (&Notification{Status: NotificationStatusActionRequired}).IsUnread())
	assert.False(t, (&Notification{Status: NotificationStatusRead}).IsUnread())
	assert.False(t, (&Notification{Status: NotificationStatusActionTaken}).IsUnread())
}
