package lifecycle

import (
	"fmt"
	"strings"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

// DecideBooking accepts or rejects a PENDING direct booking.
func DecideBooking(b *models.Booking, target models.BookingStatus) error {
	if target != models.BookingStatusAccepted && target != models.BookingStatusRejected {
		return fmt.Errorf("%w: booking status %q cannot be set directly", ErrInvalidInput, target)
	}
	if b.Status != models.BookingStatusPending {
		return fmt.Errorf("%w: booking is %s, cannot move to %s", ErrInvalidTransition, b.Status, target)
	}
	b.Status = target
	return nil
}

func PickUp(b *models.Booking) error {
	if b.Status != models.BookingStatusAccepted {
		return fmt.Errorf("%w: booking is %s, only accepted bookings can be picked up", ErrInvalidTransition, b.Status)
	}
	if b.CancellationStatus == models.CancellationStatusPending {
		return fmt.Errorf("%w: cancellation is pending", ErrInvalidTransition)
	}
	b.Status = models.BookingStatusPickedUp
	return nil
}

// RequestCancellation opens the cancellation sub-protocol. A booking gets a
// single attempt: once the farmer has answered, it cannot be reopened.
func RequestCancellation(b *models.Booking, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	if b.Status != models.BookingStatusAccepted && b.Status != models.BookingStatusPickedUp {
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	if b.CancellationStatus != "" {
		return fmt.Errorf("%w: cancellation already %s", ErrInvalidTransition, b.CancellationStatus)
	}
	b.CancellationStatus = models.CancellationStatusPending
	b.CancellationReason = reason
	return nil
}

func RespondToCancellation(b *models.Booking, action models.CancellationAction) error {
	if action != models.CancellationActionAccept && action != models.CancellationActionReject {
		return fmt.Errorf("%w: action must be ACCEPT or REJECT", ErrInvalidInput)
	}
	if b.CancellationStatus != models.CancellationStatusPending {
		return fmt.Errorf("%w: no pending cancellation", ErrInvalidTransition)
	}

	if action == models.CancellationActionAccept {
		b.Status = models.BookingStatusCancelled
		b.CancellationStatus = models.CancellationStatusApproved
		return nil
	}
	b.CancellationStatus = models.CancellationStatusRejected
	return nil
}

// CompleteTransport freezes the distance used for transporter revenue.
func CompleteTransport(b *models.Booking, km float64) error {
	if km <= 0 {
		return fmt.Errorf("%w: kilometers must be greater than 0", ErrInvalidInput)
	}
	if b.Status != models.BookingStatusAccepted && b.Status != models.BookingStatusPickedUp {
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	if b.CancellationStatus == models.CancellationStatusPending {
		return fmt.Errorf("%w: cancellation is pending", ErrInvalidTransition)
	}
	b.Status = models.BookingStatusTransported
	b.Kilometers = &km
	return nil
}

// BackfillKilometers repairs a delivered booking that was recorded without a
// distance. A recorded distance is never overwritten.
func BackfillKilometers(b *models.Booking, km float64) error {
	if km <= 0 {
		return fmt.Errorf("%w: kilometers must be greater than 0", ErrInvalidInput)
	}
	if b.Status != models.BookingStatusTransported {
		return fmt.Errorf("%w: booking is %s", ErrInvalidTransition, b.Status)
	}
	if b.Kilometers != nil && *b.Kilometers > 0 {
		return fmt.Errorf("%w: kilometers already recorded", ErrInvalidTransition)
	}
	b.Kilometers = &km
	return nil
}
