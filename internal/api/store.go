package api

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/provider"
)

// AllMarkets keys the report of observations that carry no market label
const AllMarkets = "all"

// CalibrationEntry is the cached provider calibration of one market
type CalibrationEntry struct {
	Market       string                          `json:"market"`
	Observations int                             `json:"observations"`
	Providers    models.ProviderComparisonReport `json:"provider_metrics"`
	Ranking      []provider.Ranking              `json:"provider_ranking"`
	ComputedAt   time.Time                       `json:"computed_at"`
}

// CalibrationStore keeps per-market provider calibration in memory
type CalibrationStore struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewCalibrationStore creates a store whose entries live for ttl. A
// non-positive ttl keeps entries until they are replaced.
func NewCalibrationStore(ttl time.Duration) *CalibrationStore {
	if ttl <= 0 {
		return &CalibrationStore{cache: cache.New(cache.NoExpiration, 0), ttl: cache.NoExpiration}
	}
	return &CalibrationStore{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get returns the entry for a market
func (s *CalibrationStore) Get(market string) (*CalibrationEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, found := s.cache.Get(normalizeMarket(market)); found {
		if entry, ok := item.(*CalibrationEntry); ok {
			s.hitCount++
			return entry, true
		}
	}
	s.missCount++
	return nil, false
}

// Set stores the entry under its market
func (s *CalibrationStore) Set(entry *CalibrationEntry) {
	s.cache.Set(normalizeMarket(entry.Market), entry, s.ttl)
}

// Brier returns a provider's Brier score for a market, or NaN when the
// market or provider is unknown. Provider labels match case-insensitively.
func (s *CalibrationStore) Brier(market, providerName string) float64 {
	entry, ok := s.Get(market)
	if !ok || providerName == "" {
		return math.NaN()
	}
	for label, summary := range entry.Providers {
		if strings.EqualFold(label, providerName) {
			return summary.BrierScore
		}
	}
	return math.NaN()
}

// Load recomputes the calibration of every market present in observations
// and replaces the stored entries. Markets absent from observations are
// dropped. It returns the number of markets stored.
func (s *CalibrationStore) Load(observations []models.Observation) (int, error) {
	groups := make(map[string][]models.Observation)
	for _, obs := range observations {
		key := normalizeMarket(obs.Market)
		groups[key] = append(groups[key], obs)
	}

	now := time.Now().UTC()
	entries := make([]*CalibrationEntry, 0, len(groups))
	for market, group := range groups {
		report, err := provider.Compare(group)
		if err != nil {
			return 0, err
		}
		entries = append(entries, &CalibrationEntry{
			Market:       market,
			Observations: len(group),
			Providers:    report,
			Ranking:      provider.Rank(report),
			ComputedAt:   now,
		})
	}

	for _, entry := range entries {
		s.Set(entry)
	}
	for market := range s.cache.Items() {
		if _, ok := groups[market]; !ok {
			s.cache.Delete(market)
		}
	}
	return len(entries), nil
}

// Markets lists the stored markets in order
func (s *CalibrationStore) Markets() []string {
	items := s.cache.Items()
	markets := make([]string, 0, len(items))
	for key := range items {
		markets = append(markets, key)
	}
	sort.Strings(markets)
	return markets
}

// Clear flushes the store
func (s *CalibrationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Flush()
	s.hitCount = 0
	s.missCount = 0
}

// Stats returns lookup statistics
func (s *CalibrationStore) Stats() (hits, misses uint64, ratio float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits = s.hitCount
	misses = s.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of stored markets
func (s *CalibrationStore) ItemCount() int {
	return s.cache.ItemCount()
}

func normalizeMarket(market string) string {
	market = strings.ToLower(strings.TrimSpace(market))
	if market == "" {
		return AllMarkets
	}
	return market
}
