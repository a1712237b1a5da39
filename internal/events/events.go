// Package events publishes domain events after a lifecycle change commits.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Aggregates map one-to-one onto topics.
const (
	AggregateProduct = "products"
	AggregateRequest = "requests"
	AggregateBooking = "bookings"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
	ProductSold    = "product.sold"

	SellerRequestCreated       = "seller_request.created"
	SellerRequestAccepted      = "seller_request.accepted"
	SellerRequestRejected      = "seller_request.rejected"
	TransporterRequestCreated  = "transporter_request.created"
	TransporterRequestAccepted = "transporter_request.accepted"
	TransporterRequestRejected = "transporter_request.rejected"

	BookingCreated               = "booking.created"
	BookingAccepted              = "booking.accepted"
	BookingRejected              = "booking.rejected"
	BookingPickedUp              = "booking.picked_up"
	BookingCancellationRequested = "booking.cancellation_requested"
	BookingCancellationApproved  = "booking.cancellation_approved"
	BookingCancellationRejected  = "booking.cancellation_rejected"
	BookingTransported           = "booking.transported"
	BookingKilometersUpdated     = "booking.kilometers_updated"
)

type Event struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	Aggregate   string                 `json:"aggregate"`
	AggregateID string                 `json:"aggregate_id"`
	ActorID     string                 `json:"actor_id,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
}

func New(eventType, aggregate string, aggregateID uuid.UUID, actorID string, payload map[string]interface{}) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		Aggregate:   aggregate,
		AggregateID: aggregateID.String(),
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}

// Topic is the destination for an event, e.g. "farmtomarket.bookings".
func Topic(prefix, aggregate string) string {
	if prefix == "" {
		return aggregate
	}
	return fmt.Sprintf("%s.%s", prefix, aggregate)
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
