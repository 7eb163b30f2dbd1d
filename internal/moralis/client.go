package moralis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/magma-incinerator/backend/internal/chain"
	"go.uber.org/zap"
)

// ErrUnavailable is returned when the indexer keeps responding with an error
// status for the whole retry budget.
var ErrUnavailable = errors.New("moralis unavailable")

// SleepFunc waits for d or until ctx is cancelled. Injected so tests run
// the retry loop without real delays.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TxInfo is the subset of a transaction the burn flow cares about.
// Addresses are lower-case hex.
type TxInfo struct {
	From    string
	To      string
	Success bool
}

// Client talks to the Moralis deep-index REST API.
type Client struct {
	baseURL      string
	apiKey       string
	networkChain string
	maxAttempts  int
	retryDelay   time.Duration
	sleep        SleepFunc
	httpClient   *http.Client
	log          *zap.Logger
}

type Option func(*Client)

// WithSleep overrides the inter-attempt wait. Test hook.
func WithSleep(sleep SleepFunc) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, apiKey, networkChain string, maxAttempts int, retryDelay time.Duration, log *zap.Logger, opts ...Option) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		networkChain: networkChain,
		maxAttempts:  maxAttempts,
		retryDelay:   retryDelay,
		sleep:        defaultSleep,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// txResponse mirrors the indexer payload. The receipt status has shipped
// under three different field names and types over time.
type txResponse struct {
	FromAddress       string `json:"from_address"`
	ToAddress         string `json:"to_address"`
	ReceiptStatus     any    `json:"receipt_status"`
	ReceiptStatusCode any    `json:"receipt_status_code"`
	ReceiptStatusName any    `json:"receipt_status_name"`
}

func (t *txResponse) status() any {
	if t.ReceiptStatus != nil {
		return t.ReceiptStatus
	}
	if t.ReceiptStatusCode != nil {
		return t.ReceiptStatusCode
	}
	return t.ReceiptStatusName
}

// Transaction fetches sender, recipient and receipt status for txHash.
// Error responses are retried up to the attempt budget with a fixed delay;
// a successful response describing a failed transaction is returned as-is,
// it is a definitive result, not a transient fault.
func (c *Client) Transaction(ctx context.Context, txHash string) (*TxInfo, error) {
	endpoint := fmt.Sprintf("%s/transaction/%s?chain=%s", c.baseURL, txHash, url.QueryEscape(c.networkChain))

	var lastStatus int
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-Key", c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("moralis request failed",
				zap.String("tx_hash", txHash),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastStatus = 0
		} else {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				defer resp.Body.Close()
				return decodeTx(resp.Body)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			c.log.Warn("moralis returned error status",
				zap.String("tx_hash", txHash),
				zap.Int("attempt", attempt),
				zap.Int("status", resp.StatusCode),
			)
			lastStatus = resp.StatusCode
		}

		if attempt < c.maxAttempts {
			if err := c.sleep(ctx, c.retryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts (last status %d)", ErrUnavailable, c.maxAttempts, lastStatus)
}

func decodeTx(r io.Reader) (*TxInfo, error) {
	var tx txResponse
	if err := json.NewDecoder(r).Decode(&tx); err != nil {
		return nil, fmt.Errorf("decode moralis response: %w", err)
	}
	return &TxInfo{
		From:    strings.ToLower(tx.FromAddress),
		To:      strings.ToLower(tx.ToAddress),
		Success: chain.ParseReceiptStatus(tx.status()),
	}, nil
}
