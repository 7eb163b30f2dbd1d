package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magma-incinerator/backend/internal/chain"
	"github.com/magma-incinerator/backend/internal/config"
	"github.com/magma-incinerator/backend/internal/events"
	"github.com/magma-incinerator/backend/internal/models"
	"github.com/magma-incinerator/backend/internal/moralis"
	"github.com/magma-incinerator/backend/internal/repositories"
	"go.uber.org/zap"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrInvalidTxHash  = errors.New("invalid tx hash")
	ErrInvalidBurn    = errors.New("transaction is not a valid burn")
	ErrMissingAPIKey  = errors.New("moralis api key missing")
)

// BurnLedger is the ledger surface the credit path needs. Satisfied by
// repositories.LedgerRepo and by in-memory fakes in tests.
type BurnLedger interface {
	GetUser(ctx context.Context, wallet string) (*models.MagmaUser, error)
	RecordBurn(ctx context.Context, p repositories.RecordBurnParams) (repositories.RecordBurnResult, error)
}

// BurnStore answers whether a tx hash was already credited.
type BurnStore interface {
	Exists(ctx context.Context, txHash string) (bool, error)
}

// TxVerifier resolves a transaction through the chain indexer.
type TxVerifier interface {
	Transaction(ctx context.Context, txHash string) (*moralis.TxInfo, error)
}

type BurnService struct {
	ledger    BurnLedger
	burns     BurnStore
	verifier  TxVerifier
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewBurnService(
	ledger BurnLedger,
	burns BurnStore,
	verifier TxVerifier,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *BurnService {
	return &BurnService{
		ledger:    ledger,
		burns:     burns,
		verifier:  verifier,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

type RecordBurnRequest struct {
	WalletAddress string
	TxHash        string
	Referrer      string
}

type RecordBurnOutcome struct {
	Wallet                string
	AlreadyCounted        bool
	MagmaPointsTotal      int64
	AwardedPoints         int64
	ReferralPointsAwarded int64
}

// RecordBurn drives the credit flow: normalize, dedup pre-check, on-chain
// verification, then one atomic lock-and-credit transaction.
func (s *BurnService) RecordBurn(ctx context.Context, req RecordBurnRequest) (*RecordBurnOutcome, error) {
	wallet, ok := chain.NormalizeAddress(req.WalletAddress)
	if !ok {
		return nil, ErrInvalidAddress
	}

	txHash, ok := chain.NormalizeTxHash(req.TxHash)
	if !ok {
		return nil, ErrInvalidTxHash
	}

	referrer := ""
	if req.Referrer != "" {
		if r, ok := chain.NormalizeAddress(req.Referrer); ok {
			referrer = r
		}
	}
	// A wallet is never its own referrer.
	if referrer == wallet {
		referrer = ""
	}

	credited, err := s.burns.Exists(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("burn lookup: %w", err)
	}
	if credited {
		return s.replayOutcome(ctx, wallet)
	}

	if s.cfg.MoralisAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	tx, err := s.verifier.Transaction(ctx, txHash)
	if err != nil {
		return nil, err
	}

	incinerator, _ := chain.NormalizeAddress(s.cfg.IncineratorAddress)
	if tx.From != wallet || tx.To != incinerator || !tx.Success {
		s.log.Info("rejected burn",
			zap.String("tx_hash", txHash),
			zap.String("wallet", wallet),
			zap.String("from", tx.From),
			zap.String("to", tx.To),
			zap.Bool("success", tx.Success),
		)
		return nil, ErrInvalidBurn
	}

	res, err := s.ledger.RecordBurn(ctx, repositories.RecordBurnParams{
		Wallet:         wallet,
		TxHash:         txHash,
		BurnPoints:     s.cfg.PointsPerBurn,
		Referrer:       referrer,
		ReferralPoints: s.cfg.ReferralPoints,
	})
	if err != nil {
		return nil, fmt.Errorf("record burn: %w", err)
	}

	if res.AlreadyCredited {
		// Lost the lock race to a concurrent submission of the same hash.
		return &RecordBurnOutcome{
			Wallet:           wallet,
			AlreadyCounted:   true,
			MagmaPointsTotal: res.PointsTotal,
		}, nil
	}

	s.log.Info("burn credited",
		zap.String("tx_hash", txHash),
		zap.String("wallet", wallet),
		zap.Int64("points", s.cfg.PointsPerBurn),
		zap.Int64("referral_points", res.ReferralAwarded),
		zap.String("referrer", res.EffectiveReferrer),
	)

	s.publishBurn(ctx, wallet, txHash, res)

	return &RecordBurnOutcome{
		Wallet:                wallet,
		AlreadyCounted:        false,
		MagmaPointsTotal:      res.PointsTotal,
		AwardedPoints:         s.cfg.PointsPerBurn,
		ReferralPointsAwarded: res.ReferralAwarded,
	}, nil
}

func (s *BurnService) replayOutcome(ctx context.Context, wallet string) (*RecordBurnOutcome, error) {
	var total int64
	u, err := s.ledger.GetUser(ctx, wallet)
	switch {
	case err == nil:
		total = u.MagmaPointsTotal
	case errors.Is(err, repositories.ErrUserNotFound):
		// Hash was credited to some other wallet; this one has no row.
	default:
		return nil, fmt.Errorf("replay lookup: %w", err)
	}
	return &RecordBurnOutcome{
		Wallet:           wallet,
		AlreadyCounted:   true,
		MagmaPointsTotal: total,
	}, nil
}

func (s *BurnService) publishBurn(ctx context.Context, wallet, txHash string, res repositories.RecordBurnResult) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.StreamBurns, events.Event{
		Type: events.EventBurnRecorded,
		Payload: map[string]any{
			"wallet":          wallet,
			"tx_hash":         txHash,
			"points":          s.cfg.PointsPerBurn,
			"points_total":    res.PointsTotal,
			"referrer":        res.EffectiveReferrer,
			"referral_points": res.ReferralAwarded,
		},
	})
	if err != nil {
		s.log.Warn("failed to publish burn event", zap.Error(err))
	}
}
