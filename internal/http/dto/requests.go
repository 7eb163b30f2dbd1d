package dto

type RecordBurnRequest struct {
	WalletAddress string `json:"walletAddress"`
	TxHash        string `json:"txHash"`
	Referrer      string `json:"referrer"`
}

type AdjustPointsRequest struct {
	WalletAddress string `json:"walletAddress"`
	Delta         int64  `json:"delta"`
}
