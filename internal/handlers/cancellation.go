package handlers

import (
	"stagepay/internal/services/cancellation"
	"stagepay/internal/utils"
	"stagepay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type CancellationHandler struct {
	cancellationService *cancellation.Service
}

func NewCancellationHandler(cancellationService *cancellation.Service) *CancellationHandler {
	return &CancellationHandler{cancellationService: cancellationService}
}

// PreviewPolicy shows what cancelling now would refund, without cancelling.
func (h *CancellationHandler) PreviewPolicy(c *fiber.Ctx) error {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p, err := h.cancellationService.PreviewCancellation(c.UserContext(), bookingID, actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cancellation policy computed", p)
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=4000"`
}

func (h *CancellationHandler) RequestCancellation(c *fiber.Ctx) error {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	var input cancelRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	req, err := h.cancellationService.RequestCancellation(c.UserContext(), cancellation.RequestInput{
		BookingID:   bookingID,
		RequesterID: actor.ID,
		Reason:      input.Reason,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Booking cancelled", fiber.Map{
		"cancellation_id":   req.ID,
		"refund_percentage": req.RefundPercentage,
		"refund_amount":     req.RefundAmount,
		"status":            req.Status,
	})
}

func (h *CancellationHandler) ListCancellations(c *fiber.Ctx) error {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	reqs, err := h.cancellationService.ListForBooking(c.UserContext(), bookingID, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cancellation requests retrieved successfully", reqs)
}
