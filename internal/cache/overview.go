package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/invensight/invensight/internal/config"
	"github.com/invensight/invensight/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	overviewKeyPrefix = "inventory:overview"
	summaryKeyPrefix  = "inventory:summary"
	scanBatchSize     = 100
)

// OverviewCache shields the dashboard aggregates from repeated recomputation.
// Entries are invalidated wholesale whenever a refresh pass rewrites derived
// data, so a stale read never outlives one pipeline cycle.
type OverviewCache interface {
	GetOverview(ctx context.Context) (*domain.Overview, bool, error)
	SetOverview(ctx context.Context, overview *domain.Overview) error
	GetSummary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, bool, error)
	SetSummary(ctx context.Context, filter domain.InventoryFilter, summaries []domain.StatusSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisOverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopOverviewCache struct{}

func NewOverviewCache(cfg config.CacheConfig) (OverviewCache, error) {
	if !cfg.Enabled {
		return &noopOverviewCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisOverviewCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopOverviewCache() OverviewCache {
	return &noopOverviewCache{}
}

func (c *redisOverviewCache) GetOverview(ctx context.Context) (*domain.Overview, bool, error) {
	payload, err := c.client.Get(ctx, overviewKeyPrefix).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var overview domain.Overview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, fmt.Errorf("decode overview cache: %w", err)
	}

	return &overview, true, nil
}

func (c *redisOverviewCache) SetOverview(ctx context.Context, overview *domain.Overview) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("encode overview cache: %w", err)
	}

	if err := c.client.Set(ctx, overviewKeyPrefix, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisOverviewCache) GetSummary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, bool, error) {
	key := buildSummaryKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.StatusSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisOverviewCache) SetSummary(ctx context.Context, filter domain.InventoryFilter, summaries []domain.StatusSummary) error {
	key := buildSummaryKey(filter)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisOverviewCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, overviewKeyPrefix, scanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, summaryKeyPrefix, scanBatchSize)
}

func (n *noopOverviewCache) GetOverview(ctx context.Context) (*domain.Overview, bool, error) {
	return nil, false, nil
}

func (n *noopOverviewCache) SetOverview(ctx context.Context, overview *domain.Overview) error {
	return nil
}

func (n *noopOverviewCache) GetSummary(ctx context.Context, filter domain.InventoryFilter) ([]domain.StatusSummary, bool, error) {
	return nil, false, nil
}

func (n *noopOverviewCache) SetSummary(ctx context.Context, filter domain.InventoryFilter, summaries []domain.StatusSummary) error {
	return nil
}

func (n *noopOverviewCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildSummaryKey(filter domain.InventoryFilter) string {
	return fmt.Sprintf("%s:%s", summaryKeyPrefix, summaryFilterHash(filter))
}

func summaryFilterHash(filter domain.InventoryFilter) string {
	parts := []string{}

	if len(filter.LocationIDs) > 0 {
		parts = append(parts, "location_ids="+joinStrings(filter.LocationIDs))
	}
	if len(filter.ItemIDs) > 0 {
		parts = append(parts, "item_ids="+joinStrings(filter.ItemIDs))
	}
	if len(filter.Categories) > 0 {
		parts = append(parts, "categories="+joinStrings(filter.Categories))
	}
	if filter.Status != "" {
		parts = append(parts, "status="+strings.ToUpper(strings.TrimSpace(filter.Status)))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
