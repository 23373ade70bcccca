package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-service/internal/api/dto"
	"github.com/spec-kit/queue-service/internal/service"
)

// DashboardHandler serves the combined queue overview clients poll.
type DashboardHandler struct {
	queueService  *service.QueueService
	ticketService *service.TicketService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(queueService *service.QueueService, ticketService *service.TicketService) *DashboardHandler {
	return &DashboardHandler{queueService: queueService, ticketService: ticketService}
}

// Overview GET /dashboard. Every queue with its tally and call-board entry.
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	queues, err := h.queueService.List(c.UserContext())
	if err != nil {
		return err
	}

	items := make([]dto.DashboardQueue, 0, len(queues))
	for i := range queues {
		queue := &queues[i]
		tally, err := h.ticketService.Stats(c.UserContext(), queue.ID)
		if err != nil {
			return err
		}

		item := dto.DashboardQueue{
			Queue: dto.NewQueueResponse(queue),
			Stats: tally,
		}
		if entry := h.ticketService.LastCalled(c.UserContext(), queue.ID); entry != nil {
			item.NowServing = &dto.NowServing{
				TicketID:    entry.TicketID,
				Phone:       entry.Phone,
				AttendantID: entry.AttendantID,
				CalledAt:    entry.CalledAt,
			}
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}
