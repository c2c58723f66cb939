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

// AssetsHandler manages the streetlight registry endpoints.
type AssetsHandler struct {
	service *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assetService *service.AssetService) *AssetsHandler {
	return &AssetsHandler{service: assetService}
}

// Register POST /assets.
func (h *AssetsHandler) Register(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RegisterAssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RegisterAssetInput{
		AssetID:      req.AssetID,
		Location:     domain.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		RegisteredBy: &principal.Worker.ID,
	}
	if req.InstalledAt != nil {
		input.InstalledAt = *req.InstalledAt
	}
	asset, err := h.service.RegisterAsset(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assetResponse(asset)})
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	assets, err := h.service.ListAssets(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, assetResponse(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	asset, err := h.service.GetAsset(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": assetResponse(asset)})
}

// UpdateStatus PATCH /assets/:id/status. Marking a light faulty returns the
// dispatch ticket opened (or reused) for it.
func (h *AssetsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateAssetStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	asset, ticket, err := h.service.UpdateAssetStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	resp := dto.AssetStatusResponse{Asset: assetResponse(asset)}
	if ticket != nil {
		tr := ticketResponse(ticket)
		resp.Ticket = &tr
	}
	return c.JSON(fiber.Map{"data": resp})
}

func assetResponse(asset *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:      asset.ID,
		AssetID: asset.AssetID,
		Status:  asset.Status,
		Location: dto.CoordinateResponse{
			Latitude:  asset.Location.Latitude,
			Longitude: asset.Location.Longitude,
		},
		InstalledAt:  asset.InstalledAt,
		RegisteredBy: asset.RegisteredBy,
		CreatedAt:    asset.CreatedAt,
		UpdatedAt:    asset.UpdatedAt,
	}
}
