package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"MasjidFinder-App/internal/domain/model"
)

// mockPlacesRepository テスト用のインメモリキャッシュストア。
// 鮮度フィルタは実装と同じ包含境界（last_fetched_at >= fetchedAfter）で判定する
type mockPlacesRepository struct {
	mu          sync.Mutex
	places      map[string]model.CachedPlace
	upsertErrs  map[string]error
	listErr     error
	touchCalls  []string
	upsertCalls []string
}

func newMockPlacesRepository() *mockPlacesRepository {
	return &mockPlacesRepository{
		places:     make(map[string]model.CachedPlace),
		upsertErrs: make(map[string]error),
	}
}

func (m *mockPlacesRepository) GetByPlaceID(ctx context.Context, placeID string) (*model.CachedPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	place, ok := m.places[placeID]
	if !ok {
		return nil, fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
	}
	return &place, nil
}

func (m *mockPlacesRepository) FindFreshWithinRadius(ctx context.Context, center model.LatLng, radiusMeters int, fetchedAfter time.Time) ([]model.CachedPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.CachedPlace
	for _, place := range m.places {
		if !place.LastFetchedAt.Before(fetchedAfter) {
			result = append(result, place)
		}
	}
	return result, nil
}

func (m *mockPlacesRepository) Upsert(ctx context.Context, place *model.CachedPlace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls = append(m.upsertCalls, place.PlaceID)
	if err, ok := m.upsertErrs[place.PlaceID]; ok {
		return err
	}
	if existing, ok := m.places[place.PlaceID]; ok && place.LastFetchedAt.Before(existing.LastFetchedAt) {
		// last_fetched_at は単調非減少
		place.LastFetchedAt = existing.LastFetchedAt
	}
	m.places[place.PlaceID] = *place
	return nil
}

func (m *mockPlacesRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.CachedPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.CachedPlace
	for _, place := range m.places {
		if place.LastFetchedAt.Before(olderThan) {
			result = append(result, place)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastFetchedAt.Before(result[j].LastFetchedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockPlacesRepository) TouchLastFetched(ctx context.Context, placeID string, fetchedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchCalls = append(m.touchCalls, placeID)
	place, ok := m.places[placeID]
	if !ok {
		return fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
	}
	if fetchedAt.After(place.LastFetchedAt) {
		place.LastFetchedAt = fetchedAt
	}
	m.places[placeID] = place
	return nil
}

func (m *mockPlacesRepository) get(placeID string) (model.CachedPlace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	place, ok := m.places[placeID]
	return place, ok
}

func (m *mockPlacesRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.places)
}

// mockPlacesProvider テスト用の上流プロバイダ
type mockPlacesProvider struct {
	mu            sync.Mutex
	nearbyResults []model.RawPlace
	nearbyErr     error
	nearbyCalls   int
	detailResults map[string]*model.RawPlace
	detailErrs    map[string]error
	detailCalls   []string
}

func newMockPlacesProvider() *mockPlacesProvider {
	return &mockPlacesProvider{
		detailResults: make(map[string]*model.RawPlace),
		detailErrs:    make(map[string]error),
	}
}

func (m *mockPlacesProvider) FetchNearby(ctx context.Context, center model.LatLng, radiusMeters int) ([]model.RawPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nearbyCalls++
	if m.nearbyErr != nil {
		return nil, m.nearbyErr
	}
	return m.nearbyResults, nil
}

func (m *mockPlacesProvider) FetchByID(ctx context.Context, placeID string) (*model.RawPlace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls = append(m.detailCalls, placeID)
	if err, ok := m.detailErrs[placeID]; ok {
		return nil, err
	}
	raw, ok := m.detailResults[placeID]
	if !ok {
		return nil, fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
	}
	return raw, nil
}

func (m *mockPlacesProvider) nearbyCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nearbyCalls
}

// mockTelemetryRepository テスト用の追記専用テレメトリログ。
// 非同期書き込みを待ち合わせられるようチャンネルでも通知する
type mockTelemetryRepository struct {
	mu      sync.Mutex
	entries []model.APICallLog
	ch      chan model.APICallLog
	err     error
}

func newMockTelemetryRepository() *mockTelemetryRepository {
	return &mockTelemetryRepository{
		ch: make(chan model.APICallLog, 16),
	}
}

func (m *mockTelemetryRepository) Append(ctx context.Context, entry *model.APICallLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, *entry)
	m.ch <- *entry
	return nil
}

// waitForEntry 非同期テレメトリ書き込みを1件待つ
func (m *mockTelemetryRepository) waitForEntry(timeout time.Duration) (model.APICallLog, bool) {
	select {
	case entry := <-m.ch:
		return entry, true
	case <-time.After(timeout):
		return model.APICallLog{}, false
	}
}

func (m *mockTelemetryRepository) entryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
