package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/auth"
	"github.com/spec-kit/queue-service/internal/service"
	apperrors "github.com/spec-kit/queue-service/pkg/util"
)

// QueuesHandler manages queue CRUD and stats endpoints.
type QueuesHandler struct {
	queueService  *service.QueueService
	ticketService *service.TicketService
}

// NewQueuesHandler constructs the handler.
func NewQueuesHandler(queueService *service.QueueService, ticketService *service.TicketService) *QueuesHandler {
	return &QueuesHandler{queueService: queueService, ticketService: ticketService}
}

// Create POST /queues.
func (h *QueuesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	queue, err := h.queueService.Create(c.UserContext(), user, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// List GET /queues.
func (h *QueuesHandler) List(c *fiber.Ctx) error {
	queues, err := h.queueService.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.QueueResponse, 0, len(queues))
	for i := range queues {
		items = append(items, dto.NewQueueResponse(&queues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /queues/:id.
func (h *QueuesHandler) Get(c *fiber.Ctx) error {
	queue, err := h.queueService.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// Update PUT /queues/:id. Owner or admin.
func (h *QueuesHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	queue, err := h.queueService.Update(c.UserContext(), user, c.Params("id"), service.UpdateInput{
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// Delete DELETE /queues/:id. Owner or admin; tickets cascade.
func (h *QueuesHandler) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.queueService.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "deleted", "queue_id": c.Params("id")})
}

// Stats GET /queues/:id/stats.
func (h *QueuesHandler) Stats(c *fiber.Ctx) error {
	tally, err := h.ticketService.Stats(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": tally})
}

// Tickets GET /queues/:id/tickets.
func (h *QueuesHandler) Tickets(c *fiber.Ctx) error {
	tickets, err := h.ticketService.ListByQueue(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
