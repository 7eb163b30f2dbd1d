package models

import (
	"time"

	"github.com/google/uuid"
)

// Burn records one credited burn transaction. The unique tx_hash is the
// dedup lock: a row existing for a hash means it has been credited and must
// never be credited again.
type Burn struct {
	ID            uuid.UUID `json:"id"`
	TxHash        string    `json:"tx_hash"`
	WalletAddress string    `json:"wallet_address"`
	PointsAwarded int64     `json:"points_awarded"`
	CreatedAt     time.Time `json:"created_at"`
}
