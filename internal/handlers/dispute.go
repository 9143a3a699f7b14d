package handlers

import (
	"stagepay/internal/services/dispute"
	"stagepay/internal/utils"
	"stagepay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DisputeHandler struct {
	disputeService *dispute.Service
}

func NewDisputeHandler(disputeService *dispute.Service) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

type reportRequest struct {
	Reason   string   `json:"reason" validate:"max=4000"`
	Evidence []string `json:"evidence" validate:"max=20,dive,max=2048"`
}

// ReportNonDelivery opens a non-delivery dispute on the booking in the path.
func (h *DisputeHandler) ReportNonDelivery(c *fiber.Ctx) error {
	bookingID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	var input reportRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	res, err := h.disputeService.ReportNonDelivery(c.UserContext(), dispute.ReportInput{
		BookingID:  bookingID,
		ReporterID: actor.ID,
		Reason:     input.Reason,
		Evidence:   input.Evidence,
	})
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "Dispute filed successfully", fiber.Map{
		"dispute_id":        res.Dispute.ID,
		"auto_resolve_date": res.Dispute.AutoResolveAt,
		"scheduled":         res.Scheduled.OK(),
	})
}

func (h *DisputeHandler) GetDispute(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid dispute ID")
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	d, err := h.disputeService.GetDispute(c.UserContext(), id, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dispute retrieved successfully", d)
}

type respondRequest struct {
	Action   string   `json:"action" validate:"required"`
	Response string   `json:"response" validate:"max=4000"`
	Evidence []string `json:"evidence" validate:"max=20,dive,max=2048"`
}

// RespondToDispute records the artist's answer: approve or dispute.
func (h *DisputeHandler) RespondToDispute(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid dispute ID")
	}
	var input respondRequest
	if ok, err := parseBody(c, &input); !ok {
		return err
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	d, err := h.disputeService.RespondToDispute(c.UserContext(), dispute.RespondInput{
		DisputeID: id,
		ArtistID:  actor.ID,
		Action:    input.Action,
		Response:  input.Response,
		Evidence:  input.Evidence,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Response recorded", d)
}
