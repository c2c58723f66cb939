package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gridpulse/streetlight-dispatch/internal/api/dto"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/service"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// TasksHandler exposes the field-worker task endpoints.
type TasksHandler struct {
	dispatch *service.DispatchService
	location *service.LocationService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(dispatchService *service.DispatchService, locationService *service.LocationService) *TasksHandler {
	return &TasksHandler{dispatch: dispatchService, location: locationService}
}

// Nearby GET /tasks/nearby. The caller may pass lat/lon explicitly; without
// them the worker's last reported position is used, and a missing or stale
// position fails with LOCATION_UNAVAILABLE rather than guessing.
func (h *TasksHandler) Nearby(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var origin domain.Coordinate
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	switch {
	case latStr != "" && lonStr != "":
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			return apperrors.NewValidationError("lat and lon must be numeric", nil)
		}
		origin = domain.Coordinate{Latitude: lat, Longitude: lon}
	case latStr == "" && lonStr == "":
		var err error
		origin, err = h.location.CurrentLocation(c.Context(), principal.Worker.ID)
		if err != nil {
			return err
		}
	default:
		return apperrors.NewValidationError("lat and lon must be provided together", nil)
	}

	radius := 0.0
	if radiusStr := c.Query("radius_m"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			return apperrors.NewValidationError("radius_m must be a positive number", nil)
		}
		radius = parsed
	}

	candidates, err := h.dispatch.ListNearbyOpenTickets(c.Context(), origin, radius)
	if err != nil {
		return err
	}
	items := make([]dto.NearbyTicketResponse, 0, len(candidates))
	for i := range candidates {
		items = append(items, dto.NearbyTicketResponse{
			TicketResponse: ticketResponse(&candidates[i].Ticket),
			DistanceMeters: candidates[i].DistanceMeters,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Mine GET /tasks/mine.
func (h *TasksHandler) Mine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.dispatch.ListAssignedTickets(c.Context(), principal.Worker.ID)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Claim POST /tasks/:id/claim.
func (h *TasksHandler) Claim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID := c.Params("id")
	if err := h.dispatch.ClaimTicket(c.Context(), ticketID, principal.Worker.ID); err != nil {
		return err
	}
	ticket, err := h.dispatch.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Resolve POST /tasks/:id/resolve. Linemen may only resolve their own
// assignment; admins may resolve any ticket.
func (h *TasksHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticketID := c.Params("id")

	if principal.Role != domain.WorkerRoleAdmin {
		ticket, err := h.dispatch.GetTicket(c.Context(), ticketID)
		if err != nil {
			return err
		}
		if ticket.AssignedWorkerID == nil || *ticket.AssignedWorkerID != principal.Worker.ID {
			return apperrors.NewForbidden("ticket is not assigned to you")
		}
	}

	if err := h.dispatch.ResolveTicket(c.Context(), ticketID); err != nil {
		return err
	}
	ticket, err := h.dispatch.GetTicket(c.Context(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}
