package lifecycle

import (
	"fmt"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
)

// DecideRequest moves a seller or transporter request out of PENDING.
func DecideRequest(current, target models.RequestStatus) error {
	if target != models.RequestStatusAccepted && target != models.RequestStatusRejected {
		return fmt.Errorf("%w: unknown request status %q", ErrInvalidInput, target)
	}
	if current != models.RequestStatusPending {
		return fmt.Errorf("%w: request is %s, cannot move to %s", ErrInvalidTransition, current, target)
	}
	return nil
}

// CancelRequest retires an accepted transporter request whose booking was
// cancelled, so the pair may be booked again.
func CancelRequest(current models.RequestStatus) error {
	if current != models.RequestStatusAccepted {
		return fmt.Errorf("%w: request is %s, cannot cancel", ErrInvalidTransition, current)
	}
	return nil
}

// IsActiveRequest reports whether a request still blocks a new one for the
// same product and counterparty.
func IsActiveRequest(status models.RequestStatus) bool {
	return status == models.RequestStatusPending || status == models.RequestStatusAccepted
}
