package models

import "time"

// MagmaUser is the per-wallet points ledger row. Wallets are stored as
// lower-case hex and never deleted.
type MagmaUser struct {
	WalletAddress        string    `json:"wallet_address"`
	MagmaPointsTotal     int64     `json:"magma_points_total"`
	ReferralPointsEarned int64     `json:"referral_points_earned"`
	ReferredByWallet     *string   `json:"referred_by_wallet,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
