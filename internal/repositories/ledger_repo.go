package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/magma-incinerator/backend/internal/models"
)

// ErrUserNotFound is returned when a wallet has no ledger row.
var ErrUserNotFound = errors.New("user not found")

type LedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

func (r *LedgerRepo) GetUser(ctx context.Context, wallet string) (*models.MagmaUser, error) {
	var u models.MagmaUser
	err := r.pool.QueryRow(ctx, `
		SELECT wallet_address, magma_points_total, referral_points_earned, referred_by_wallet, created_at, updated_at
		FROM magma_users WHERE wallet_address = $1
	`, wallet).Scan(&u.WalletAddress, &u.MagmaPointsTotal, &u.ReferralPointsEarned, &u.ReferredByWallet, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *LedgerRepo) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM magma_users`).Scan(&n)
	return n, err
}

func (r *LedgerRepo) CountReferredBy(ctx context.Context, wallet string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM magma_users WHERE referred_by_wallet = $1`, wallet).Scan(&n)
	return n, err
}

func (r *LedgerRepo) CountWithHigherPoints(ctx context.Context, threshold int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM magma_users WHERE magma_points_total > $1`, threshold).Scan(&n)
	return n, err
}

func (r *LedgerRepo) TopUsers(ctx context.Context, limit int) ([]models.MagmaUser, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT wallet_address, magma_points_total, referral_points_earned, referred_by_wallet, created_at, updated_at
		FROM magma_users
		ORDER BY magma_points_total DESC, wallet_address ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.MagmaUser
	for rows.Next() {
		var u models.MagmaUser
		if err := rows.Scan(&u.WalletAddress, &u.MagmaPointsTotal, &u.ReferralPointsEarned, &u.ReferredByWallet, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RecordBurnParams describes one credit unit. Referrer is empty when no
// referral candidate was declared.
type RecordBurnParams struct {
	Wallet         string
	TxHash         string
	BurnPoints     int64
	Referrer       string
	ReferralPoints int64
}

type RecordBurnResult struct {
	AlreadyCredited   bool
	PointsTotal       int64
	EffectiveReferrer string
	ReferralAwarded   int64
}

// RecordBurn applies one burn credit as a single transaction. The dedup
// lock insert on magma_burns.tx_hash comes first: of two concurrent
// submissions for the same hash exactly one wins the insert, the other
// observes the conflict and reports an idempotent replay. Point mutations
// are SQL-side increments so concurrent burns for the same wallet cannot
// lose updates, and the referrer binding is first-write-wins via COALESCE.
func (r *LedgerRepo) RecordBurn(ctx context.Context, p RecordBurnParams) (RecordBurnResult, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return RecordBurnResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	ct, err := tx.Exec(ctx, `
		INSERT INTO magma_burns (id, tx_hash, wallet_address, points_awarded)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tx_hash) DO NOTHING
	`, uuid.New(), p.TxHash, p.Wallet, p.BurnPoints)
	if err != nil {
		return RecordBurnResult{}, err
	}

	if ct.RowsAffected() == 0 {
		// Hash already credited. The conflict is the authoritative
		// already-processed signal, not an error.
		var total int64
		err := tx.QueryRow(ctx, `SELECT magma_points_total FROM magma_users WHERE wallet_address = $1`, p.Wallet).Scan(&total)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return RecordBurnResult{}, err
		}
		return RecordBurnResult{AlreadyCredited: true, PointsTotal: total}, nil
	}

	var referrer *string
	if p.Referrer != "" {
		referrer = &p.Referrer
	}

	var (
		total     int64
		effective *string
	)
	err = tx.QueryRow(ctx, `
		INSERT INTO magma_users (wallet_address, magma_points_total, referred_by_wallet)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET
			magma_points_total = magma_users.magma_points_total + EXCLUDED.magma_points_total,
			referred_by_wallet = COALESCE(magma_users.referred_by_wallet, EXCLUDED.referred_by_wallet),
			updated_at = now()
		RETURNING magma_points_total, referred_by_wallet
	`, p.Wallet, p.BurnPoints, referrer).Scan(&total, &effective)
	if err != nil {
		return RecordBurnResult{}, err
	}

	res := RecordBurnResult{PointsTotal: total}

	if effective != nil && *effective != p.Wallet && p.ReferralPoints > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO magma_users (wallet_address, magma_points_total, referral_points_earned)
			VALUES ($1, $2, $2)
			ON CONFLICT (wallet_address) DO UPDATE SET
				magma_points_total = magma_users.magma_points_total + EXCLUDED.magma_points_total,
				referral_points_earned = magma_users.referral_points_earned + EXCLUDED.referral_points_earned,
				updated_at = now()
		`, *effective, p.ReferralPoints)
		if err != nil {
			return RecordBurnResult{}, err
		}
		res.EffectiveReferrer = *effective
		res.ReferralAwarded = p.ReferralPoints
	}

	if err := tx.Commit(ctx); err != nil {
		return RecordBurnResult{}, err
	}
	return res, nil
}

// AdjustPoints applies an operator correction to a wallet's total, creating
// the row when absent. Totals never go below zero.
func (r *LedgerRepo) AdjustPoints(ctx context.Context, wallet string, delta int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO magma_users (wallet_address, magma_points_total)
		VALUES ($1, GREATEST(0, $2))
		ON CONFLICT (wallet_address) DO UPDATE SET
			magma_points_total = GREATEST(0, magma_users.magma_points_total + $2),
			updated_at = now()
		RETURNING magma_points_total
	`, wallet, delta).Scan(&total)
	return total, err
}
