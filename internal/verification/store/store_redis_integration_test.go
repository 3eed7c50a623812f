//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"signet/internal/verification"
	"signet/internal/verification/store"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

// =============================================================================
// Redis Cache Integration Test Suite
// =============================================================================

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = store.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func cachedResult(signatureID string) *verification.Result {
	return &verification.Result{
		ID:          uuid.NewString(),
		SignatureID: signatureID,
		Valid:       true,
		Status:      verification.StatusVerified,
		Details: verification.Details{
			Checks: map[verification.CheckName]bool{verification.CheckDeviceTrust: true},
			Risk:   verification.RiskAssessment{Level: verification.RiskLow, Factors: []verification.RiskFactor{}},
		},
		Recommendations: []string{},
		VerifiedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *RedisCacheSuite) TestGetAndSet() {
	ctx := context.Background()

	s.Run("cache miss maps to not found", func() {
		_, err := s.cache.Get(ctx, "sig-x")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("cached result round-trips", func() {
		result := cachedResult("sig-1")
		s.Require().NoError(s.cache.Set(ctx, result))

		cached, err := s.cache.Get(ctx, "sig-1")
		s.Require().NoError(err)
		s.Equal(result.ID, cached.ID)
		s.Equal(result.Status, cached.Status)
	})

	s.Run("a later set replaces the cached result", func() {
		first := cachedResult("sig-2")
		second := cachedResult("sig-2")
		s.Require().NoError(s.cache.Set(ctx, first))
		s.Require().NoError(s.cache.Set(ctx, second))

		cached, err := s.cache.Get(ctx, "sig-2")
		s.Require().NoError(err)
		s.Equal(second.ID, cached.ID)
	})

	s.Run("entries expire with the configured TTL", func() {
		shortLived := store.NewRedisCache(s.redis.Client, time.Second)
		s.Require().NoError(shortLived.Set(ctx, cachedResult("sig-3")))

		s.Eventually(func() bool {
			_, err := shortLived.Get(ctx, "sig-3")
			return err != nil
		}, 5*time.Second, 200*time.Millisecond)
	})
}
