package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lumi/backend/internal/catalog"
	"github.com/lumi/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSources = []domain.TrendSource{
	{ID: "vogue", Label: "Vogue Runway", URL: "https://vogue.test/trends", Kind: domain.SourceKindHTML},
	{ID: "wwww", Label: "Who What Wear", URL: "https://wwww.test/trends", Kind: domain.SourceKindHTML},
	{ID: "gq", Label: "GQ Style", URL: "https://gq.test/feed", Kind: domain.SourceKindRSS},
}

func headingPage(prefix string, n int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<h2>%s headline %d about tailored denim</h2>", prefix, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func rssFeed(prefix string, n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><rss version="2.0"><channel><title>Feed</title>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "<item><title>%s headline %d about sheer layering</title></item>", prefix, i)
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func newTestTrendService(fetcher *MockDocumentFetcher, cache *MockCacheRepository) *TrendService {
	return NewTrendService(fetcher, cache, newTestClusterer(), TrendServiceConfig{
		Sources:     testSources,
		SnapshotTTL: time.Minute,
	})
}

func TestTrendService_RefreshAllSourcesHealthy(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	fetcher.documents["https://wwww.test/trends"] = headingPage("WWW", 5)
	fetcher.documents["https://gq.test/feed"] = rssFeed("GQ", 5)
	cache := NewMockCacheRepository()

	snapshot := newTestTrendService(fetcher, cache).Refresh(context.Background())

	require.Len(t, snapshot.Sources, 3)
	for i, status := range snapshot.Sources {
		assert.Equal(t, testSources[i].ID, status.ID)
		assert.Equal(t, domain.SourceStatusOK, status.Status)
		assert.Len(t, status.Items, 5)
		assert.Empty(t, status.Error)
	}
	assert.Equal(t, "GQ Style", snapshot.Sources[2].Items[0].Source)
	assert.Equal(t, "Layer gauzy panels over sleek bodysuits for contrast.", snapshot.Sources[2].Items[0].Excerpt)

	require.Len(t, snapshot.Clusters, 3)
	assert.Empty(t, snapshot.Warning)
	assert.False(t, snapshot.UsedFallback)
	assert.Equal(t, "Vogue Runway", snapshot.Clusters[0].Examples[0].Source)
	assert.Equal(t, "GQ Style", snapshot.Clusters[2].Examples[0].Source)
	assert.Len(t, snapshot.RefreshID, 26)
	assert.False(t, snapshot.RefreshedAt.IsZero())

	assert.Equal(t, 1, cache.setCalled)
	assert.Equal(t, time.Minute, cache.lastTTL)
}

func TestTrendService_FailedSourceIsIsolated(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	fetcher.errors["https://wwww.test/trends"] = errors.New("HTTP 503")
	fetcher.documents["https://gq.test/feed"] = rssFeed("GQ", 4)

	snapshot := newTestTrendService(fetcher, NewMockCacheRepository()).Refresh(context.Background())

	require.Len(t, snapshot.Sources, 3)
	assert.Equal(t, domain.SourceStatusOK, snapshot.Sources[0].Status)
	assert.Equal(t, domain.SourceStatusError, snapshot.Sources[1].Status)
	assert.Equal(t, "HTTP 503", snapshot.Sources[1].Error)
	assert.NotNil(t, snapshot.Sources[1].Items)
	assert.Empty(t, snapshot.Sources[1].Items)
	assert.Equal(t, domain.SourceStatusOK, snapshot.Sources[2].Status)

	assert.Equal(t, WarningSupplemented, snapshot.Warning)
	require.Len(t, snapshot.Clusters, 3)
	for _, cluster := range snapshot.Clusters {
		assert.Len(t, cluster.Examples, 5)
	}
}

func TestTrendService_AllSourcesFailing(t *testing.T) {
	fetcher := NewMockDocumentFetcher()

	snapshot := newTestTrendService(fetcher, NewMockCacheRepository()).Refresh(context.Background())

	for _, status := range snapshot.Sources {
		assert.Equal(t, domain.SourceStatusError, status.Status)
	}
	assert.True(t, snapshot.UsedFallback)
	assert.Equal(t, WarningFallback, snapshot.Warning)
	assert.Equal(t, catalog.MustDefault().FallbackClusters(), snapshot.Clusters)
}

func TestTrendService_PanickingSource(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	fetcher.panics["https://wwww.test/trends"] = true
	fetcher.documents["https://gq.test/feed"] = rssFeed("GQ", 5)

	snapshot := newTestTrendService(fetcher, NewMockCacheRepository()).Refresh(context.Background())

	assert.Equal(t, domain.SourceStatusError, snapshot.Sources[1].Status)
	assert.Equal(t, "Unexpected error", snapshot.Sources[1].Error)
	assert.Equal(t, domain.SourceStatusOK, snapshot.Sources[0].Status)
	assert.Equal(t, domain.SourceStatusOK, snapshot.Sources[2].Status)
}

func TestTrendService_FailedSnapshot(t *testing.T) {
	svc := newTestTrendService(NewMockDocumentFetcher(), NewMockCacheRepository())

	snapshot := svc.failedSnapshot("01J0000000000000000000000")

	assert.Equal(t, WarningRefreshError, snapshot.Warning)
	assert.True(t, snapshot.UsedFallback)
	require.Len(t, snapshot.Sources, 3)
	for _, status := range snapshot.Sources {
		assert.Equal(t, domain.SourceStatusError, status.Status)
		assert.Equal(t, "Unexpected error", status.Error)
	}
	assert.Len(t, snapshot.Clusters, 3)
}

func TestTrendService_LatestUsesCache(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	cache := NewMockCacheRepository()
	svc := newTestTrendService(fetcher, cache)
	ctx := context.Background()

	first := svc.Latest(ctx)
	callsAfterFirst := fetcher.calls
	second := svc.Latest(ctx)

	assert.Equal(t, 3, callsAfterFirst)
	assert.Equal(t, callsAfterFirst, fetcher.calls)
	assert.Equal(t, first.RefreshID, second.RefreshID)

	// A corrupt cache entry forces a new pass
	cache.data[snapshotCacheKey] = []byte("{not json")
	third := svc.Latest(ctx)
	assert.NotEqual(t, first.RefreshID, third.RefreshID)

	var stored domain.TrendSnapshot
	require.NoError(t, json.Unmarshal(cache.data[snapshotCacheKey], &stored))
	assert.Equal(t, third.RefreshID, stored.RefreshID)
}

func TestTrendService_CacheFailureDoesNotFailRefresh(t *testing.T) {
	cache := NewMockCacheRepository()
	cache.setError = errors.New("cache down")

	snapshot := newTestTrendService(NewMockDocumentFetcher(), cache).Refresh(context.Background())
	assert.NotNil(t, snapshot)
	assert.Len(t, snapshot.Clusters, 3)
}

func TestTrendService_NotifiesListeners(t *testing.T) {
	svc := newTestTrendService(NewMockDocumentFetcher(), NewMockCacheRepository())

	var received []string
	svc.OnSnapshot(func(snapshot *domain.TrendSnapshot) {
		received = append(received, snapshot.RefreshID)
	})

	snapshot := svc.Refresh(context.Background())
	assert.Equal(t, []string{snapshot.RefreshID}, received)
}

func TestTrendService_CancelledRefreshIsNotPublished(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	fetcher.documents["https://wwww.test/trends"] = headingPage("WWW", 5)
	fetcher.documents["https://gq.test/feed"] = rssFeed("GQ", 5)
	cache := NewMockCacheRepository()
	svc := newTestTrendService(fetcher, cache)

	notified := 0
	svc.OnSnapshot(func(*domain.TrendSnapshot) { notified++ })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	abandoned := svc.Latest(ctx)
	require.NotNil(t, abandoned)
	assert.True(t, abandoned.UsedFallback)
	assert.Equal(t, 0, cache.setCalled)
	assert.Equal(t, 0, notified)

	// The next caller gets a live pass rather than the abandoned fallback
	live := svc.Latest(context.Background())
	assert.NotEqual(t, abandoned.RefreshID, live.RefreshID)
	assert.False(t, live.UsedFallback)
	assert.Empty(t, live.Warning)
	assert.Equal(t, 1, cache.setCalled)
	assert.Equal(t, 1, notified)
}

func TestTrendService_Run(t *testing.T) {
	t.Run("returns immediately when disabled", func(t *testing.T) {
		fetcher := NewMockDocumentFetcher()
		svc := newTestTrendService(fetcher, NewMockCacheRepository())
		svc.Run(context.Background(), 0)
		assert.Equal(t, 0, fetcher.calls)
	})

	t.Run("refreshes until cancelled", func(t *testing.T) {
		svc := newTestTrendService(NewMockDocumentFetcher(), NewMockCacheRepository())
		ctx, cancel := context.WithCancel(context.Background())

		refreshed := make(chan struct{}, 8)
		svc.OnSnapshot(func(*domain.TrendSnapshot) {
			select {
			case refreshed <- struct{}{}:
			default:
			}
		})

		done := make(chan struct{})
		go func() {
			svc.Run(ctx, 5*time.Millisecond)
			close(done)
		}()

		<-refreshed
		<-refreshed
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Run did not stop after cancel")
		}
	})
}

func TestTrendService_Sources(t *testing.T) {
	svc := newTestTrendService(NewMockDocumentFetcher(), NewMockCacheRepository())
	sources := svc.Sources()
	sources[0].ID = "changed"
	assert.Equal(t, "vogue", svc.Sources()[0].ID)
}

func TestTrendService_Clusters(t *testing.T) {
	fetcher := NewMockDocumentFetcher()
	cache := NewMockCacheRepository()
	svc := newTestTrendService(fetcher, cache)
	ctx := context.Background()

	// Nothing cached yet: fallback, and no fetches
	assert.Equal(t, catalog.MustDefault().FallbackClusters(), svc.Clusters(ctx))
	assert.Equal(t, 0, fetcher.calls)

	fetcher.documents["https://vogue.test/trends"] = headingPage("Vogue", 5)
	fetcher.documents["https://wwww.test/trends"] = headingPage("WWW", 5)
	fetcher.documents["https://gq.test/feed"] = rssFeed("GQ", 5)
	snapshot := svc.Refresh(ctx)

	assert.Equal(t, snapshot.Clusters, svc.Clusters(ctx))
}
