package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/config"
	"github.com/magma-incinerator/backend/internal/http/dto"
)

type MetaHandler struct {
	cfg *config.Config
}

func NewMetaHandler(cfg *config.Config) *MetaHandler {
	return &MetaHandler{cfg: cfg}
}

// GetIncinerator exposes the contract address and award constants the
// frontend needs to render the burn form.
// GET /meta/incinerator
func (h *MetaHandler) GetIncinerator(c *fiber.Ctx) error {
	return c.JSON(dto.IncineratorMetaResponse{
		IncineratorAddress: h.cfg.IncineratorAddress,
		Chain:              h.cfg.MoralisChain,
		PointsPerBurn:      h.cfg.PointsPerBurn,
		ReferralPoints:     h.cfg.ReferralPoints,
	})
}
