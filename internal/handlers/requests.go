// internal/handlers/requests.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/services"
	"github.com/Mohit-R-04/FarmToMarket/internal/utils"
)

type SellerRequestHandler struct {
	requestService *services.SellerRequestService
}

func NewSellerRequestHandler(requestService *services.SellerRequestService) *SellerRequestHandler {
	return &SellerRequestHandler{requestService: requestService}
}

func requestFilter(c *gin.Context, counterparty string) services.RequestFilter {
	return services.RequestFilter{
		ProductID:      uuidQuery(c, "product_id"),
		FarmerID:       c.Query("farmer_id"),
		CounterpartyID: c.Query(counterparty),
		Status:         models.RequestStatus(c.Query("status")),
	}
}

// GET /seller-requests
func (h *SellerRequestHandler) List(c *gin.Context) {
	requests, err := h.requestService.List(c.Request.Context(), requestFilter(c, "seller_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, requests)
}

// POST /seller-requests
func (h *SellerRequestHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req services.CreateSellerRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, request)
}

// GET /seller-requests/:id
func (h *SellerRequestHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, request)
}

// PUT /seller-requests/:id
func (h *SellerRequestHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Decide(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, request)
}

type TransporterRequestHandler struct {
	requestService *services.TransporterRequestService
}

func NewTransporterRequestHandler(requestService *services.TransporterRequestService) *TransporterRequestHandler {
	return &TransporterRequestHandler{requestService: requestService}
}

// GET /transporter-requests
func (h *TransporterRequestHandler) List(c *gin.Context) {
	requests, err := h.requestService.List(c.Request.Context(), requestFilter(c, "transporter_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, requests)
}

// POST /transporter-requests
func (h *TransporterRequestHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req services.CreateTransporterRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, request)
}

// GET /transporter-requests/:id
func (h *TransporterRequestHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, request)
}

// PUT /transporter-requests/:id
// Accepting also returns the booking it created.
func (h *TransporterRequestHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req services.StatusUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Status == models.RequestStatusAccepted {
		request, booking, err := h.requestService.Accept(c.Request.Context(), actor, id)
		if err != nil {
			respondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{
			"request": request,
			"booking": booking,
		})
		return
	}

	request, err := h.requestService.Decide(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"request": request})
}
