package services

import (
	"context"
	"fmt"

	"github.com/magma-incinerator/backend/internal/chain"
	"go.uber.org/zap"
)

// PointsAdjuster applies operator corrections to a wallet's total.
type PointsAdjuster interface {
	AdjustPoints(ctx context.Context, wallet string, delta int64) (int64, error)
}

type AdminService struct {
	ledger PointsAdjuster
	log    *zap.Logger
}

func NewAdminService(ledger PointsAdjuster, log *zap.Logger) *AdminService {
	return &AdminService{ledger: ledger, log: log}
}

// AdjustPoints credits or debits a wallet outside the burn flow. The store
// clamps the resulting total at zero.
func (s *AdminService) AdjustPoints(ctx context.Context, walletAddress string, delta int64) (string, int64, error) {
	wallet, ok := chain.NormalizeAddress(walletAddress)
	if !ok {
		return "", 0, ErrInvalidAddress
	}

	total, err := s.ledger.AdjustPoints(ctx, wallet, delta)
	if err != nil {
		return "", 0, fmt.Errorf("adjust points: %w", err)
	}

	s.log.Info("points adjusted",
		zap.String("wallet", wallet),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
	return wallet, total, nil
}
