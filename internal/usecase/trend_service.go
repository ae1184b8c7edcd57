package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lumi/backend/internal/domain"
	"github.com/lumi/backend/internal/infrastructure/scrape"
	"github.com/oklog/ulid/v2"
)

const (
	snapshotCacheKey   = "trends:snapshot"
	unexpectedErrorMsg = "Unexpected error"
)

// TrendServiceConfig holds configuration for the trend service
type TrendServiceConfig struct {
	Sources     []domain.TrendSource
	SnapshotTTL time.Duration
}

// SnapshotListener is notified after every completed aggregation pass
type SnapshotListener func(snapshot *domain.TrendSnapshot)

// TrendService scrapes the configured sources and clusters their headlines
type TrendService struct {
	fetcher     domain.DocumentFetcher
	cache       domain.CacheRepository
	clusterer   *TrendClusterer
	sources     []domain.TrendSource
	snapshotTTL time.Duration

	mu        sync.RWMutex
	listeners []SnapshotListener
}

// NewTrendService creates a new trend service with dependencies
func NewTrendService(
	fetcher domain.DocumentFetcher,
	cache domain.CacheRepository,
	clusterer *TrendClusterer,
	config TrendServiceConfig,
) *TrendService {
	ttl := config.SnapshotTTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	return &TrendService{
		fetcher:     fetcher,
		cache:       cache,
		clusterer:   clusterer,
		sources:     append([]domain.TrendSource(nil), config.Sources...),
		snapshotTTL: ttl,
	}
}

// Sources returns the configured trend sources
func (s *TrendService) Sources() []domain.TrendSource {
	return append([]domain.TrendSource(nil), s.sources...)
}

// OnSnapshot registers a listener for completed snapshots
func (s *TrendService) OnSnapshot(listener SnapshotListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Latest returns the cached snapshot, running a pass when none is cached or it expired.
func (s *TrendService) Latest(ctx context.Context) *domain.TrendSnapshot {
	if snapshot, err := s.Cached(ctx); err == nil {
		return snapshot
	}
	return s.Refresh(ctx)
}

// Refresh runs a full aggregation pass and stores the result.
// Concurrent refreshes are not coordinated; the last one to finish is the one cached.
// A pass whose context ends before it completes is returned to the caller but
// neither cached nor broadcast, since its failures say nothing about the sources.
func (s *TrendService) Refresh(ctx context.Context) *domain.TrendSnapshot {
	snapshot := s.aggregate(ctx)

	if err := ctx.Err(); err != nil {
		log.Printf("[TRENDS] Refresh %s abandoned: %v", snapshot.RefreshID, err)
		return snapshot
	}

	if err := s.store(ctx, snapshot); err != nil {
		log.Printf("[TRENDS] Failed to cache snapshot %s: %v", snapshot.RefreshID, err)
	}

	s.mu.RLock()
	listeners := append([]SnapshotListener(nil), s.listeners...)
	s.mu.RUnlock()
	for _, listener := range listeners {
		listener(snapshot)
	}

	return snapshot
}

// Run refreshes immediately and then on every tick until ctx is cancelled.
// A non-positive interval disables the loop.
func (s *TrendService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[TRENDS] Background refresh every %s", interval)
	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[TRENDS] Background refresh stopped")
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// aggregate fetches every source and clusters the union of their examples.
// A panic anywhere in the pass yields the fallback snapshot with every source failed.
func (s *TrendService) aggregate(ctx context.Context) (snapshot *domain.TrendSnapshot) {
	refreshID := ulid.Make().String()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TRENDS] Refresh %s failed: %v", refreshID, r)
			snapshot = s.failedSnapshot(refreshID)
		}
	}()

	statuses := s.fetchAll(ctx)

	var examples []domain.TrendExample
	for _, status := range statuses {
		examples = append(examples, status.Items...)
	}

	result := s.clusterer.Cluster(examples)
	log.Printf("[TRENDS] Refresh %s: %d examples from %d sources in %s (fallback=%t)",
		refreshID, len(examples), len(statuses), time.Since(start).Round(time.Millisecond), result.UsedFallback)

	return &domain.TrendSnapshot{
		RefreshID:    refreshID,
		Clusters:     result.Clusters,
		Sources:      statuses,
		Warning:      result.Warning,
		UsedFallback: result.UsedFallback,
		RefreshedAt:  time.Now().UTC(),
	}
}

// fetchAll fetches every source concurrently and waits for all of them to settle.
// Each goroutine owns exactly one slot of the returned slice.
func (s *TrendService) fetchAll(ctx context.Context) []domain.TrendSourceStatus {
	statuses := make([]domain.TrendSourceStatus, len(s.sources))

	var wg sync.WaitGroup
	for i, source := range s.sources {
		wg.Add(1)
		go func(slot int, source domain.TrendSource) {
			defer wg.Done()
			statuses[slot] = s.fetchSource(ctx, source)
		}(i, source)
	}
	wg.Wait()

	return statuses
}

func (s *TrendService) fetchSource(ctx context.Context, source domain.TrendSource) (status domain.TrendSourceStatus) {
	status = domain.TrendSourceStatus{
		ID:     source.ID,
		Label:  source.Label,
		URL:    source.URL,
		Status: domain.SourceStatusLoading,
		Items:  []domain.TrendExample{},
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TRENDS] Source %s panicked: %v", source.ID, r)
			status.Status = domain.SourceStatusError
			status.Items = []domain.TrendExample{}
			status.Error = unexpectedErrorMsg
		}
	}()

	document, err := s.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		log.Printf("[TRENDS] Source %s failed: %v", source.ID, err)
		status.Status = domain.SourceStatusError
		status.Error = err.Error()
		return status
	}

	headlines := scrape.Headlines(source.Kind, document)
	status.Items = HeadlinesToExamples(headlines, source.Label, source.URL)
	status.Status = domain.SourceStatusOK
	return status
}

func (s *TrendService) failedSnapshot(refreshID string) *domain.TrendSnapshot {
	statuses := make([]domain.TrendSourceStatus, len(s.sources))
	for i, source := range s.sources {
		statuses[i] = domain.TrendSourceStatus{
			ID:     source.ID,
			Label:  source.Label,
			URL:    source.URL,
			Status: domain.SourceStatusError,
			Items:  []domain.TrendExample{},
			Error:  unexpectedErrorMsg,
		}
	}

	return &domain.TrendSnapshot{
		RefreshID:    refreshID,
		Clusters:     s.clusterer.Fallback(),
		Sources:      statuses,
		Warning:      WarningRefreshError,
		UsedFallback: true,
		RefreshedAt:  time.Now().UTC(),
	}
}

// Clusters returns the clusters of the cached snapshot without triggering a
// pass, or the fallback clusters when nothing is cached.
func (s *TrendService) Clusters(ctx context.Context) []domain.TrendCluster {
	if snapshot, err := s.Cached(ctx); err == nil {
		return snapshot.Clusters
	}
	return s.clusterer.Fallback()
}

// Cached retrieves the last snapshot from cache
func (s *TrendService) Cached(ctx context.Context) (*domain.TrendSnapshot, error) {
	raw, err := s.cache.Get(ctx, snapshotCacheKey)
	if err != nil {
		return nil, err
	}

	var snapshot domain.TrendSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &snapshot, nil
}

// store caches the snapshot for the configured TTL
func (s *TrendService) store(ctx context.Context, snapshot *domain.TrendSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, snapshotCacheKey, raw, s.snapshotTTL)
}
