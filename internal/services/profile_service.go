package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/magma-incinerator/backend/internal/models"
	"github.com/magma-incinerator/backend/internal/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaderboardCacheKey = "magma:leaderboard:%d"

// ProfileLedger is the read-only ledger surface behind profile and
// leaderboard queries.
type ProfileLedger interface {
	GetUser(ctx context.Context, wallet string) (*models.MagmaUser, error)
	CountUsers(ctx context.Context) (int64, error)
	CountReferredBy(ctx context.Context, wallet string) (int64, error)
	CountWithHigherPoints(ctx context.Context, threshold int64) (int64, error)
	TopUsers(ctx context.Context, limit int) ([]models.MagmaUser, error)
}

type BurnHistory interface {
	RecentByWallet(ctx context.Context, wallet string, limit int) ([]models.Burn, error)
}

type ProfileService struct {
	ledger   ProfileLedger
	burns    BurnHistory
	cache    *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewProfileService(ledger ProfileLedger, burns BurnHistory, cache *redis.Client, cacheTTL time.Duration, log *zap.Logger) *ProfileService {
	return &ProfileService{
		ledger:   ledger,
		burns:    burns,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

type Profile struct {
	WalletAddress        string  `json:"walletAddress"`
	MagmaPointsTotal     int64   `json:"magmaPointsTotal"`
	ReferralPointsEarned int64   `json:"referralPointsEarned"`
	ReferralCount        int64   `json:"referralCount"`
	ReferredByWallet     *string `json:"referredByWallet"`
	Rank                 *int64  `json:"rank"`
	TotalUsers           int64   `json:"totalUsers"`
}

// GetProfile returns the wallet's points, referral stats and rank. A wallet
// with no ledger row gets a zero profile; rank is only defined for wallets
// with points.
func (s *ProfileService) GetProfile(ctx context.Context, wallet string) (*Profile, error) {
	totalUsers, err := s.ledger.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	u, err := s.ledger.GetUser(ctx, wallet)
	if errors.Is(err, repositories.ErrUserNotFound) {
		return &Profile{
			WalletAddress: wallet,
			TotalUsers:    totalUsers,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	referralCount, err := s.ledger.CountReferredBy(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}

	var rank *int64
	if u.MagmaPointsTotal > 0 {
		higher, err := s.ledger.CountWithHigherPoints(ctx, u.MagmaPointsTotal)
		if err != nil {
			return nil, fmt.Errorf("count higher: %w", err)
		}
		r := higher + 1
		rank = &r
	}

	return &Profile{
		WalletAddress:        wallet,
		MagmaPointsTotal:     u.MagmaPointsTotal,
		ReferralPointsEarned: u.ReferralPointsEarned,
		ReferralCount:        referralCount,
		ReferredByWallet:     u.ReferredByWallet,
		Rank:                 rank,
		TotalUsers:           totalUsers,
	}, nil
}

type LeaderboardEntry struct {
	Rank                 int64  `json:"rank"`
	WalletAddress        string `json:"walletAddress"`
	MagmaPointsTotal     int64  `json:"magmaPointsTotal"`
	ReferralPointsEarned int64  `json:"referralPointsEarned"`
}

type Leaderboard struct {
	Entries    []LeaderboardEntry `json:"entries"`
	TotalUsers int64              `json:"totalUsers"`
}

// Leaderboard returns the top wallets by points, competition-ranked (equal
// totals share a rank). Results are cached briefly in redis; cache failures
// are non-fatal.
func (s *ProfileService) Leaderboard(ctx context.Context, limit int) (*Leaderboard, error) {
	key := fmt.Sprintf(leaderboardCacheKey, limit)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var lb Leaderboard
			if err := json.Unmarshal([]byte(cached), &lb); err == nil {
				return &lb, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	users, err := s.ledger.TopUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	totalUsers, err := s.ledger.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	lb := &Leaderboard{
		Entries:    make([]LeaderboardEntry, 0, len(users)),
		TotalUsers: totalUsers,
	}
	var (
		prevPoints int64 = -1
		prevRank   int64
	)
	for i, u := range users {
		rank := int64(i) + 1
		if u.MagmaPointsTotal == prevPoints {
			rank = prevRank
		}
		lb.Entries = append(lb.Entries, LeaderboardEntry{
			Rank:                 rank,
			WalletAddress:        u.WalletAddress,
			MagmaPointsTotal:     u.MagmaPointsTotal,
			ReferralPointsEarned: u.ReferralPointsEarned,
		})
		prevPoints = u.MagmaPointsTotal
		prevRank = rank
	}

	if s.cache != nil {
		if data, err := json.Marshal(lb); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.log.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	return lb, nil
}

// RecentBurns returns a wallet's burn history, newest first.
func (s *ProfileService) RecentBurns(ctx context.Context, wallet string, limit int) ([]models.Burn, error) {
	return s.burns.RecentByWallet(ctx, wallet, limit)
}
