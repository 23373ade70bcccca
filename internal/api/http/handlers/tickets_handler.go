package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	ticketService *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{ticketService: ticketService}
}

// Enqueue POST /tickets.
func (h *TicketsHandler) Enqueue(c *fiber.Ctx) error {
	var req dto.EnqueueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.QueueID == "" {
		return apperrors.NewValidationError("queue_id required", nil)
	}

	ticket, err := h.ticketService.Enqueue(c.UserContext(), req.QueueID, req.Phone)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// CallNext POST /tickets/next. The caller becomes the assigned attendant.
func (h *TicketsHandler) CallNext(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CallNextRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.QueueID == "" {
		return apperrors.NewValidationError("queue_id required", nil)
	}

	ticket, err := h.ticketService.CallNext(c.UserContext(), req.QueueID, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Messages GET /tickets/:id/messages. Notification audit trail for a ticket.
func (h *TicketsHandler) Messages(c *fiber.Ctx) error {
	entries, err := h.ticketService.MessageHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MessageLogResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewMessageLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Cancel POST /tickets/:id/cancel. Assigned attendant or admin.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.ticketService.Cancel(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// Serve POST /tickets/:id/serve. Assigned attendant or admin; called only.
func (h *TicketsHandler) Serve(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.ticketService.MarkServed(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}
