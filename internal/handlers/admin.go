package handlers

import (
	"stagepay/internal/services/booking"
	"stagepay/internal/services/dispute"
	"stagepay/internal/utils"
	"stagepay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the administrator endpoints. Role checks happen in
// middleware.AdminAuthMiddleware before these handlers run.
type AdminHandler struct {
	disputeService *dispute.Service
	bookingService *booking.Service
}

func NewAdminHandler(disputeService *dispute.Service, bookingService *booking.Service) *AdminHandler {
	return &AdminHandler{disputeService: disputeService, bookingService: bookingService}
}

// ListDisputes returns dispute summaries, optionally filtered by ?status=.
func (h *AdminHandler) ListDisputes(c *fiber.Ctx) error {
	disputes, err := h.disputeService.ListDisputes(c.UserContext(), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Disputes retrieved successfully", disputes)
}

type resolveRequest struct {
	Decision     string  `json:"decision" validate:"required"`
	Notes        string  `json:"notes" validate:"max=4000"`
	RefundAmount float64 `json:"refund_amount"`
}

func (h *AdminHandler) ResolveDispute(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid dispute ID")
	}
	var input resolveRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	d, err := h.disputeService.AdminResolveDispute(c.UserContext(), dispute.AdminResolveInput{
		DisputeID:    id,
		AdminID:      actor.ID,
		Decision:     input.Decision,
		Notes:        input.Notes,
		RefundAmount: input.RefundAmount,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dispute resolved", d)
}

// RecordPayment marks the booking's payment as held in escrow.
func (h *AdminHandler) RecordPayment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}

	b, err := h.bookingService.RecordPayment(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Payment recorded", b)
}
