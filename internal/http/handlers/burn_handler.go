package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/http/dto"
	"github.com/magma-incinerator/backend/internal/moralis"
	"github.com/magma-incinerator/backend/internal/services"
	"go.uber.org/zap"
)

type BurnHandler struct {
	burnService *services.BurnService
	log         *zap.Logger
}

func NewBurnHandler(burnService *services.BurnService, log *zap.Logger) *BurnHandler {
	return &BurnHandler{burnService: burnService, log: log}
}

// RecordBurn credits a verified burn transaction.
// POST /magma/record-burn
func (h *BurnHandler) RecordBurn(c *fiber.Ctx) error {
	var req dto.RecordBurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	outcome, err := h.burnService.RecordBurn(c.Context(), services.RecordBurnRequest{
		WalletAddress: req.WalletAddress,
		TxHash:        req.TxHash,
		Referrer:      req.Referrer,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAddress):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid wallet address"})
		case errors.Is(err, services.ErrInvalidTxHash):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid txHash"})
		case errors.Is(err, services.ErrInvalidBurn):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Transaction is not a valid burn"})
		case errors.Is(err, services.ErrMissingAPIKey):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Moralis API key missing"})
		case errors.Is(err, moralis.ErrUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Error: "Failed to fetch transaction from Moralis"})
		default:
			h.log.Error("record burn failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal error"})
		}
	}

	resp := dto.RecordBurnResponse{
		Success:               true,
		AlreadyCounted:        outcome.AlreadyCounted,
		Wallet:                outcome.Wallet,
		AwardedPoints:         outcome.AwardedPoints,
		ReferralPointsAwarded: outcome.ReferralPointsAwarded,
	}
	if outcome.AlreadyCounted {
		total := outcome.MagmaPointsTotal
		resp.MagmaPointsTotal = &total
	}
	return c.JSON(resp)
}
