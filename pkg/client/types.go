package client

import (
	"time"

	"github.com/google/uuid"
)

// Wire types mirror the JSON the API serves. They carry no persistence
// concerns, so callers outside the server can build and read them.

type CancellationAction string

const (
	CancellationAccept CancellationAction = "ACCEPT"
	CancellationReject CancellationAction = "REJECT"
)

type NotificationType string

const (
	NotificationInfo                NotificationType = "INFO"
	NotificationAlert               NotificationType = "ALERT"
	NotificationCancellationRequest NotificationType = "CANCELLATION_REQUEST"
)

type NotificationStatus string

const (
	NotificationUnread         NotificationStatus = "UNREAD"
	NotificationRead           NotificationStatus = "READ"
	NotificationActionRequired NotificationStatus = "ACTION_REQUIRED"
	NotificationActionTaken    NotificationStatus = "ACTION_TAKEN"
)

type Notification struct {
	ID           uuid.UUID          `json:"id"`
	UserID       string             `json:"user_id"`
	Message      string             `json:"message"`
	Type         NotificationType   `json:"type"`
	RelatedID    *uuid.UUID         `json:"related_id,omitempty"`
	Status       NotificationStatus `json:"status"`
	ActionStatus string             `json:"action_status,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// IsUnread is true until the notification is read or acted upon.
func (n *Notification) IsUnread() bool {
	return n.Status != NotificationRead && n.Status != NotificationActionTaken
}

// NeedsAction reports whether the notification is a cancellation prompt
// still waiting for an answer.
func (n *Notification) NeedsAction() bool {
	return n.Type == NotificationCancellationRequest && n.Status == NotificationActionRequired
}

type JourneyStep struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	Sequence    int       `json:"sequence"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ActorID     string    `json:"actor_id,omitempty"`
	ActorName   string    `json:"actor_name,omitempty"`
	Location    string    `json:"location,omitempty"`
	Quantity    *float64  `json:"quantity,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID                 uuid.UUID     `json:"id"`
	FarmerID           string        `json:"farmer_id"`
	FarmerName         string        `json:"farmer_name"`
	Name               string        `json:"name"`
	Description        string        `json:"description,omitempty"`
	Quantity           float64       `json:"quantity"`
	OriginalQuantity   float64       `json:"original_quantity"`
	Unit               string        `json:"unit"`
	ProductionLocation string        `json:"production_location"`
	CurrentLocation    string        `json:"current_location"`
	QRCode             string        `json:"qr_code"`
	Tags               []string      `json:"tags"`
	Status             string        `json:"status"`
	SellerID           string        `json:"seller_id,omitempty"`
	SellerName         string        `json:"seller_name,omitempty"`
	SellerLocation     string        `json:"seller_location,omitempty"`
	SellerPrice        float64       `json:"seller_price,omitempty"`
	FarmerPrice        float64       `json:"farmer_price,omitempty"`
	TransporterID      string        `json:"transporter_id,omitempty"`
	TransporterName    string        `json:"transporter_name,omitempty"`
	TransporterCharge  float64       `json:"transporter_charge,omitempty"`
	Journey            []JourneyStep `json:"journey,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type Booking struct {
	ID                   uuid.UUID  `json:"id"`
	ProductID            uuid.UUID  `json:"product_id"`
	FarmerID             string     `json:"farmer_id"`
	TransporterID        string     `json:"transporter_id"`
	TransporterRequestID *uuid.UUID `json:"transporter_request_id,omitempty"`
	FarmerDemandedCharge float64    `json:"farmer_demanded_charge"`
	TransporterCharge    float64    `json:"transporter_charge"`
	TransportDate        time.Time  `json:"transport_date"`
	Status               string     `json:"status"`
	Kilometers           *float64   `json:"kilometers,omitempty"`
	CancellationStatus   string     `json:"cancellation_status,omitempty"`
	CancellationReason   string     `json:"cancellation_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

type SaleRequest struct {
	Quantity float64 `json:"quantity"`
	Reason   string  `json:"reason,omitempty"`
}

type unreadCount struct {
	UserID string `json:"user_id"`
	Unread int64  `json:"unread"`
}

type cancellationAnswer struct {
	Action CancellationAction `json:"action"`
}
