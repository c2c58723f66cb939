package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gridpulse/streetlight-dispatch/internal/api/dto"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/service"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// TicketsHandler exposes the dispatcher-facing ticket endpoints.
type TicketsHandler struct {
	service *service.DispatchService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(dispatchService *service.DispatchService) *TicketsHandler {
	return &TicketsHandler{service: dispatchService}
}

// List GET /tickets?status=.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status", string(domain.TicketStatusOpen)))
	tickets, err := h.service.ListTickets(c.Context(), status)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.WorkerID == "" {
		return apperrors.NewValidationError("worker_id required", nil)
	}

	if err := h.service.AssignTicketDirectly(c.Context(), c.Params("id"), req.WorkerID, &principal.Worker.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"assigned": true}})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.service.GetTicketHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ChangeType: entry.ChangeType,
			ChangedBy:  entry.ChangedBy,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		AssetRef:        ticket.AssetRef,
		AssetExternalID: ticket.AssetExternalID,
		Status:          ticket.Status,
		Location: dto.CoordinateResponse{
			Latitude:  ticket.Location.Latitude,
			Longitude: ticket.Location.Longitude,
		},
		AssignedWorkerID:   ticket.AssignedWorkerID,
		AssignedWorkerName: ticket.AssignedWorkerName,
		CreatedAt:          ticket.CreatedAt,
		ResolvedAt:         ticket.ResolvedAt,
	}
}
