package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/commerce-core/internal/inventory/domain"
	"github.com/tair/commerce-core/pkg/logger"
)

const (
	summaryCacheKey = "inventory:summary:24h"
	summaryCacheTTL = 5 * time.Minute
	summaryWindow   = 24 * time.Hour
)

// Summary is the by-type mutation report over the rolling day window.
// Reporting only, never a source of truth for stock counts.
type Summary struct {
	Since     time.Time            `json:"since"`
	ByType    []domain.TypeSummary `json:"by_type"`
	FromCache bool                 `json:"-"`
}

// SummaryHandler handles ledger summary queries with a short-lived redis
// cache in front of the aggregate query.
type SummaryHandler struct {
	ledger domain.LedgerRepository
	cache  *redis.Client
}

// NewSummaryHandler creates a new summary handler. cache may be nil, in
// which case every query hits storage.
func NewSummaryHandler(ledger domain.LedgerRepository, cache *redis.Client) *SummaryHandler {
	return &SummaryHandler{ledger: ledger, cache: cache}
}

// Handle executes the summary query
func (h *SummaryHandler) Handle(ctx context.Context) (*Summary, error) {
	if h.cache != nil {
		cached, err := h.cache.Get(ctx, summaryCacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			var summary Summary
			if err := json.Unmarshal(cached, &summary); err == nil {
				summary.FromCache = true
				return &summary, nil
			}
		}
	}

	since := time.Now().Add(-summaryWindow)
	byType, err := h.ledger.SummarizeByType(ctx, since)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Since: since, ByType: byType}

	if h.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := h.cache.Set(ctx, summaryCacheKey, payload, summaryCacheTTL).Err(); err != nil {
				logger.Warn(ctx).Err(err).Msg("Failed to cache inventory summary")
			}
		}
	}

	return summary, nil
}
