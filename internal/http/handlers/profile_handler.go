package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/chain"
	"github.com/magma-incinerator/backend/internal/http/dto"
	"github.com/magma-incinerator/backend/internal/services"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	maxLimit       int
	log            *zap.Logger
}

func NewProfileHandler(profileService *services.ProfileService, maxLimit int, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, maxLimit: maxLimit, log: log}
}

// GetProfile returns points, referral stats and rank for a wallet.
// GET /magma/profile?address=0x... (alias: wallet)
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	param := c.Query("address")
	if param == "" {
		param = c.Query("wallet")
	}

	wallet, ok := chain.NormalizeAddress(param)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid wallet address"})
	}

	profile, err := h.profileService.GetProfile(c.Context(), wallet)
	if err != nil {
		h.log.Error("profile query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal error"})
	}

	return c.JSON(profile)
}

// GetLeaderboard returns the top wallets by points.
// GET /magma/leaderboard?limit=25
func (h *ProfileHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := h.parseLimit(c.Query("limit"), 25)

	lb, err := h.profileService.Leaderboard(c.Context(), limit)
	if err != nil {
		h.log.Error("leaderboard query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal error"})
	}

	return c.JSON(lb)
}

// GetBurns returns a wallet's burn history, newest first.
// GET /magma/burns?address=0x...&limit=20
func (h *ProfileHandler) GetBurns(c *fiber.Ctx) error {
	param := c.Query("address")
	if param == "" {
		param = c.Query("wallet")
	}

	wallet, ok := chain.NormalizeAddress(param)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid wallet address"})
	}

	limit := h.parseLimit(c.Query("limit"), 20)

	burns, err := h.profileService.RecentBurns(c.Context(), wallet, limit)
	if err != nil {
		h.log.Error("burn history query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal error"})
	}

	resp := dto.BurnHistoryResponse{
		WalletAddress: wallet,
		Burns:         make([]dto.BurnHistoryItem, 0, len(burns)),
	}
	for _, b := range burns {
		resp.Burns = append(resp.Burns, dto.BurnHistoryItem{
			TxHash:        b.TxHash,
			PointsAwarded: b.PointsAwarded,
			CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(resp)
}

func (h *ProfileHandler) parseLimit(raw string, fallback int) int {
	limit := fallback
	if raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}
	return limit
}
