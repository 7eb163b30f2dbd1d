package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/http/dto"
	"github.com/magma-incinerator/backend/internal/services"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService *services.AdminService
	log          *zap.Logger
}

func NewAdminHandler(adminService *services.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, log: log}
}

// AdjustPoints applies an operator correction to a wallet's total.
// POST /admin/adjust-points
func (h *AdminHandler) AdjustPoints(c *fiber.Ctx) error {
	var req dto.AdjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Delta == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "delta must be non-zero"})
	}

	wallet, total, err := h.adminService.AdjustPoints(c.Context(), req.WalletAddress, req.Delta)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAddress) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid wallet address"})
		}
		h.log.Error("adjust points failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal error"})
	}

	return c.JSON(dto.AdjustPointsResponse{Wallet: wallet, MagmaPointsTotal: total})
}
