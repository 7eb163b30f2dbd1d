package dto

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RecordBurnResponse covers both the first-time and the replay shape of a
// credit. MagmaPointsTotal is only reported on replays, matching the
// original wire contract.
type RecordBurnResponse struct {
	Success               bool   `json:"success"`
	AlreadyCounted        bool   `json:"alreadyCounted"`
	Wallet                string `json:"wallet"`
	MagmaPointsTotal      *int64 `json:"magmaPointsTotal,omitempty"`
	AwardedPoints         int64  `json:"awardedPoints"`
	ReferralPointsAwarded int64  `json:"referralPointsAwarded"`
}

type AdjustPointsResponse struct {
	Wallet           string `json:"wallet"`
	MagmaPointsTotal int64  `json:"magmaPointsTotal"`
}

type IncineratorMetaResponse struct {
	IncineratorAddress string `json:"incineratorAddress"`
	Chain              string `json:"chain"`
	PointsPerBurn      int64  `json:"pointsPerBurn"`
	ReferralPoints     int64  `json:"referralPoints"`
}

type BurnHistoryItem struct {
	TxHash        string `json:"txHash"`
	PointsAwarded int64  `json:"pointsAwarded"`
	CreatedAt     string `json:"createdAt"`
}

type BurnHistoryResponse struct {
	WalletAddress string            `json:"walletAddress"`
	Burns         []BurnHistoryItem `json:"burns"`
}
