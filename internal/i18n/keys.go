// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyConflict      = "conflict"
	KeyInternalError = "internal_error"
	KeyRateLimited   = "rate_limit.exceeded"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAccessDenied     = "auth.access_denied"
	KeyRoleDenied       = "auth.role_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyDuplicateRequest  = "request.duplicate"
	KeyInvalidTransition = "request.invalid_transition"

	// Idempotency
	KeyIdempotencyInProgress = "idempotency.in_progress"
	KeyIdempotencyKeyReused  = "idempotency.key_reused"

	// Resources
	KeyProductCreated = "product.created"
	KeyProductUpdated = "product.updated"
	KeyProductDeleted = "product.deleted"
	KeyDataCleared    = "admin.data_cleared"
	KeyDataCleaned    = "admin.orphans_removed"
	KeyRoleSaved      = "role.saved"

	// Notification messages
	KeyNotifySellerRequestCreated       = "notify.seller_request.created"
	KeyNotifySellerRequestAccepted      = "notify.seller_request.accepted"
	KeyNotifySellerRequestRejected      = "notify.seller_request.rejected"
	KeyNotifyTransporterRequestCreated  = "notify.transporter_request.created"
	KeyNotifyTransporterRequestAccepted = "notify.transporter_request.accepted"
	KeyNotifyTransporterRequestRejected = "notify.transporter_request.rejected"
	KeyNotifyBookingCreated             = "notify.booking.created"
	KeyNotifyBookingRejected            = "notify.booking.rejected"
	KeyNotifyBookingPickedUp            = "notify.booking.picked_up"
	KeyNotifyCancellationRequested      = "notify.booking.cancellation_requested"
	KeyNotifyCancellationApproved       = "notify.booking.cancellation_approved"
	KeyNotifyCancellationRejected       = "notify.booking.cancellation_rejected"
	KeyNotifyTransported                = "notify.booking.transported"
	KeyNotifyProductSold                = "notify.product.sold"

	// Journey step descriptions
	KeyJourneyProduced        = "journey.produced"
	KeyJourneySellerAssigned  = "journey.seller_assigned"
	KeyJourneyTransportBooked = "journey.transport_booked"
	KeyJourneyPickedUp        = "journey.picked_up"
	KeyJourneyCancelled       = "journey.transport_cancelled"
	KeyJourneyDelivered       = "journey.delivered"
	KeyJourneySold            = "journey.sold"
)
