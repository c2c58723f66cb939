package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gridpulse/streetlight-dispatch/internal/api/dto"
	"github.com/gridpulse/streetlight-dispatch/internal/auth"
	"github.com/gridpulse/streetlight-dispatch/internal/domain"
	"github.com/gridpulse/streetlight-dispatch/internal/service"
	apperrors "github.com/gridpulse/streetlight-dispatch/pkg/util/errorutil"
)

// WorkersHandler manages worker accounts and position reports.
type WorkersHandler struct {
	authService     *service.AuthService
	locationService *service.LocationService
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(authService *service.AuthService, locationService *service.LocationService) *WorkersHandler {
	return &WorkersHandler{authService: authService, locationService: locationService}
}

// Register POST /auth/register.
func (h *WorkersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterWorkerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	worker, token, expiresAt, err := h.authService.RegisterWorker(c.Context(), service.RegisterWorkerInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Worker:    workerResponse(worker),
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// Login POST /auth/login.
func (h *WorkersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	worker, token, expiresAt, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Worker:    workerResponse(worker),
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// Me GET /workers/me.
func (h *WorkersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": workerResponse(principal.Worker)})
}

// ListLinemen GET /workers/linemen.
func (h *WorkersHandler) ListLinemen(c *fiber.Ctx) error {
	linemen, err := h.authService.ListLinemen(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.WorkerResponse, 0, len(linemen))
	for i := range linemen {
		items = append(items, workerResponse(&linemen[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateLocation PUT /location.
func (h *WorkersHandler) UpdateLocation(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	loc := domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := h.locationService.UpdateLocation(c.Context(), principal.Worker.ID, loc); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func workerResponse(worker *domain.Worker) dto.WorkerResponse {
	return dto.WorkerResponse{
		ID:          worker.ID,
		DisplayName: worker.DisplayName,
		Email:       worker.Email,
		Role:        worker.Role,
		CreatedAt:   worker.CreatedAt,
	}
}
