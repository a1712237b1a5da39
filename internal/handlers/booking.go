// internal/handlers/booking.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/services"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// GET /bookings
func (h *BookingHandler) List(c *gin.Context) {
	filter := services.BookingFilter{
		ProductID:     uuidQuery(c, "product_id"),
		FarmerID:      c.Query("farmer_id"),
		TransporterID: c.Query("transporter_id"),
		Status:        models.BookingStatus(c.Query("status")),
	}

	bookings, err := h.bookingService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, bookings)
}

// POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req services.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, booking)
}

// GET /bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, booking)
}

// bookingAction binds the JSON body into T and runs one of the booking
// transitions with it.
func bookingAction[T any](c *gin.Context, run func(ctx context.Context, actor services.Actor, id uuid.UUID, req *T) (*models.Booking, error)) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req T
	if !bindJSON(c, &req) {
		return
	}

	booking, err := run(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, booking)
}

// PUT /bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	bookingAction(c, h.bookingService.Decide)
}

// PUT /bookings/:id/picked-up
func (h *BookingHandler) PickedUp(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.MarkPickedUp(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, booking)
}

// PUT /bookings/:id/request-cancellation
func (h *BookingHandler) RequestCancellation(c *gin.Context) {
	bookingAction(c, h.bookingService.RequestCancellation)
}

// PUT /bookings/:id/respond-cancellation
func (h *BookingHandler) RespondCancellation(c *gin.Context) {
	bookingAction(c, h.bookingService.RespondToCancellation)
}

// PUT /bookings/:id/transported
func (h *BookingHandler) Transported(c *gin.Context) {
	bookingAction(c, h.bookingService.CompleteTransport)
}

// PUT /bookings/:id/kilometers
func (h *BookingHandler) UpdateKilometers(c *gin.Context) {
	bookingAction(c, h.bookingService.UpdateKilometers)
}
