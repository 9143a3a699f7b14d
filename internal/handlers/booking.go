package handlers

import (
	"stagepay/internal/services/booking"
	"stagepay/internal/utils"
	"stagepay/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type BookingHandler struct {
	bookingService *booking.Service
}

func NewBookingHandler(bookingService *booking.Service) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	b, err := h.bookingService.Get(c.UserContext(), id, actor)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Booking retrieved successfully", b)
}

func (h *BookingHandler) ConfirmDelivery(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid booking ID")
	}
	actor, err := utils.GetActor(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	b, err := h.bookingService.ConfirmDelivery(c.UserContext(), id, actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Delivery confirmed, payment released", b)
}
