package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/magma-incinerator/backend/internal/models"
)

// ErrBurnNotFound is returned when no burn row exists for a tx hash.
var ErrBurnNotFound = errors.New("burn not found")

type BurnRepo struct {
	pool *pgxpool.Pool
}

func NewBurnRepo(pool *pgxpool.Pool) *BurnRepo {
	return &BurnRepo{pool: pool}
}

// Exists reports whether txHash has already been credited. Used as the
// cheap pre-check before hitting the indexer; the authoritative check is
// the lock insert inside LedgerRepo.RecordBurn.
func (r *BurnRepo) Exists(ctx context.Context, txHash string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM magma_burns WHERE tx_hash = $1)`, txHash).Scan(&exists)
	return exists, err
}

func (r *BurnRepo) GetByTxHash(ctx context.Context, txHash string) (*models.Burn, error) {
	var b models.Burn
	err := r.pool.QueryRow(ctx, `
		SELECT id, tx_hash, wallet_address, points_awarded, created_at
		FROM magma_burns WHERE tx_hash = $1
	`, txHash).Scan(&b.ID, &b.TxHash, &b.WalletAddress, &b.PointsAwarded, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBurnNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// RecentByWallet returns a wallet's burn history, newest first.
func (r *BurnRepo) RecentByWallet(ctx context.Context, wallet string, limit int) ([]models.Burn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tx_hash, wallet_address, points_awarded, created_at
		FROM magma_burns
		WHERE wallet_address = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, wallet, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var burns []models.Burn
	for rows.Next() {
		var b models.Burn
		if err := rows.Scan(&b.ID, &b.TxHash, &b.WalletAddress, &b.PointsAwarded, &b.CreatedAt); err != nil {
			return nil, err
		}
		burns = append(burns, b)
	}
	return burns, rows.Err()
}
