// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type Role string

const (
	RoleFarmer      Role = "FARMER"
	RoleSeller      Role = "SELLER"
	RoleTransporter Role = "TRANSPORTER"
	RoleAdmin       Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleSeller, RoleTransporter, RoleAdmin:
		return true
	}
	return false
}

type ProductStatus string

const (
	ProductStatusCreated          ProductStatus = "CREATED"
	ProductStatusAssignedToSeller ProductStatus = "ASSIGNED_TO_SELLER"
	ProductStatusBookedTransport  ProductStatus = "BOOKED_TRANSPORT"
	ProductStatusInTransit        ProductStatus = "IN_TRANSIT"
	ProductStatusAtSeller         ProductStatus = "AT_SELLER"
	ProductStatusPartiallySold    ProductStatus = "PARTIALLY_SOLD"
	ProductStatusSold             ProductStatus = "SOLD"
	ProductStatusRejected         ProductStatus = "REJECTED"
)

type JourneyStepType string

const (
	JourneyStepTransport JourneyStepType = "TRANSPORT"
	JourneyStepSeller    JourneyStepType = "SELLER"
	JourneyStepLocation  JourneyStepType = "LOCATION"
)

type JourneyStepStatus string

const (
	StepStatusPending       JourneyStepStatus = "PENDING"
	StepStatusAccepted      JourneyStepStatus = "ACCEPTED"
	StepStatusRejected      JourneyStepStatus = "REJECTED"
	StepStatusCompleted     JourneyStepStatus = "COMPLETED"
	StepStatusSold          JourneyStepStatus = "SOLD"
	StepStatusPartiallySold JourneyStepStatus = "PARTIALLY_SOLD"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "PENDING"
	BookingStatusAccepted    BookingStatus = "ACCEPTED"
	BookingStatusRejected    BookingStatus = "REJECTED"
	BookingStatusPickedUp    BookingStatus = "PICKED_UP"
	BookingStatusTransported BookingStatus = "TRANSPORTED"
	BookingStatusCancelled   BookingStatus = "CANCELLED"
)

type CancellationStatus string

const (
	CancellationStatusPending  CancellationStatus = "PENDING"
	CancellationStatusApproved CancellationStatus = "APPROVED"
	CancellationStatusRejected CancellationStatus = "REJECTED"
)

type CancellationAction string

const (
	CancellationActionAccept CancellationAction = "ACCEPT"
	CancellationActionReject CancellationAction = "REJECT"
)

type NotificationType string

const (
	NotificationTypeInfo                NotificationType = "INFO"
	NotificationTypeAlert               NotificationType = "ALERT"
	NotificationTypeCancellationRequest NotificationType = "CANCELLATION_REQUEST"
)

type NotificationStatus string

const (
	NotificationStatusUnread         NotificationStatus = "UNREAD"
	NotificationStatusRead           NotificationStatus = "READ"
	NotificationStatusActionRequired NotificationStatus = "ACTION_REQUIRED"
	NotificationStatusActionTaken    NotificationStatus = "ACTION_TAKEN"
)

type NotificationActionStatus string

const (
	ActionStatusPending  NotificationActionStatus = "PENDING"
	ActionStatusAccepted NotificationActionStatus = "ACCEPTED"
	ActionStatusRejected NotificationActionStatus = "REJECTED"
)
