package redis

import (
	"context"
	"errors"
	"time"

	"github.com/campuscare/wellbeing-hub/internal/application/analytics"
	"github.com/campuscare/wellbeing-hub/pkg/circuitbreaker"
	"github.com/campuscare/wellbeing-hub/pkg/logger"
)

// SummaryCache keeps computed performance summaries per student. Entries are
// dropped whenever one of the student's records changes.
//
// Reads and writes go through a circuit breaker so an unreachable Redis costs
// one timeout per breaker window instead of one per request. Invalidations
// always reach Redis.
type SummaryCache struct {
	cache   *Cache
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	log     *logger.Logger
}

// NewSummaryCache creates a SummaryCache with the given TTL.
func NewSummaryCache(cache *Cache, ttl time.Duration, log *logger.Logger) *SummaryCache {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("summary_cache"))
	breaker := circuitbreaker.CacheBreaker(func(name string, from, to circuitbreaker.State) {
		log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	})
	return &SummaryCache{
		cache:   cache,
		ttl:     ttl,
		breaker: breaker,
		log:     log,
	}
}

var _ analytics.SummaryCache = (*SummaryCache)(nil)

// GetSummary returns the cached summary and true, or false on miss or error.
// Cache failures never reach the caller; the summary is recomputed instead.
func (c *SummaryCache) GetSummary(ctx context.Context, studentID int64) (analytics.PerformanceSummary, bool) {
	var (
		s    analytics.PerformanceSummary
		miss bool
	)
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		err := c.cache.Get(ctx, SummaryKey(studentID), &s)
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})
	if err != nil || miss {
		if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			c.log.Warn("summary cache read failed", logger.StudentID(studentID), logger.Err(err))
		}
		return analytics.PerformanceSummary{}, false
	}
	return s, true
}

// PutSummary stores a summary.
func (c *SummaryCache) PutSummary(ctx context.Context, studentID int64, s analytics.PerformanceSummary) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.cache.Set(ctx, SummaryKey(studentID), s, c.ttl)
	})
	if err != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		c.log.Warn("summary cache write failed", logger.StudentID(studentID), logger.Err(err))
	}
}

// InvalidateStudent drops the cached summary of one student.
func (c *SummaryCache) InvalidateStudent(ctx context.Context, studentID int64) {
	if err := c.cache.Delete(ctx, SummaryKey(studentID)); err != nil {
		c.log.Warn("summary cache invalidation failed", logger.StudentID(studentID), logger.Err(err))
	}
}

// InvalidateAll drops every cached summary.
func (c *SummaryCache) InvalidateAll(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, PrefixSummary+"*")
}
