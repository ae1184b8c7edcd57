package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/lumi/backend/internal/domain"
)

// The ports carry only what the services call, so Get/Set doubles satisfy them
var (
	_ domain.CacheRepository = (*MockCacheRepository)(nil)
	_ domain.KeyValueStore   = (*MockKeyValueStore)(nil)
	_ domain.DocumentFetcher = (*MockDocumentFetcher)(nil)
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string][]byte
	getError  error
	setError  error
	setCalled int
	lastTTL   time.Duration
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		data: make(map[string][]byte),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled++
	m.lastTTL = ttl
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}


// MockDocumentFetcher serves canned documents keyed by URL
type MockDocumentFetcher struct {
	mu        sync.Mutex
	documents map[string]string
	errors    map[string]error
	panics    map[string]bool
	calls     int
}

func NewMockDocumentFetcher() *MockDocumentFetcher {
	return &MockDocumentFetcher{
		documents: make(map[string]string),
		errors:    make(map[string]error),
		panics:    make(map[string]bool),
	}
}

func (m *MockDocumentFetcher) Fetch(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.calls++
	doc, docOK := m.documents[url]
	err := m.errors[url]
	shouldPanic := m.panics[url]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if shouldPanic {
		panic("fetcher exploded")
	}
	if err != nil {
		return "", err
	}
	if !docOK {
		return "", domain.ErrSourceFetch
	}
	return doc, nil
}

// MockTextGenerator is a mock implementation of domain.TextGenerator
type MockTextGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return m.response, m.err
}

// MockImageGenerator is a mock implementation of domain.ImageGenerator
type MockImageGenerator struct {
	imageURL   string
	err        error
	lastPrompt string
	called     bool
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	m.called = true
	m.lastPrompt = prompt
	return m.imageURL, m.err
}

// MockWebSearcher is a mock implementation of domain.WebSearcher
type MockWebSearcher struct {
	hits      []domain.WebSearchHit
	err       error
	lastQuery string
	lastLimit int
}

func (m *MockWebSearcher) Search(ctx context.Context, query string, limit int) ([]domain.WebSearchHit, error) {
	m.lastQuery = query
	m.lastLimit = limit
	return m.hits, m.err
}

// MockKeyValueStore is a mock implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	data     map[string][]byte
	getError error
	setError error
	writes   int
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string][]byte)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	value, ok := m.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return value, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	m.writes++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}
