package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/infrastructure/database"
)

func newTestSupabaseRepo(t *testing.T, serverURL string) *SupabasePlacesRepository {
	t.Helper()
	client, err := database.NewSupabaseClient(serverURL, "test-anon-key")
	require.NoError(t, err)
	return NewSupabasePlacesRepository(client).(*SupabasePlacesRepository)
}

func TestSupabasePlacesRepository_ListStaleOrdersOldestFirstOnServer(t *testing.T) {
	var captured url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	repo := newTestSupabaseRepo(t, server.URL)
	olderThan := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	places, err := repo.ListStale(context.Background(), olderThan, 500)
	require.NoError(t, err)
	assert.Empty(t, places)

	// limitで打ち切られても最古のエントリが取り残されないよう、
	// 並び順はクライアント側ではなくサーバー側で保証する
	assert.Contains(t, captured.Get("order"), "last_fetched_at.asc")
	assert.Equal(t, "500", captured.Get("limit"))
	assert.Equal(t, "lt.2025-06-01T12:00:00Z", captured.Get("last_fetched_at"))
}

func TestSupabasePlacesRepository_UpsertSendsLocationAndKeepsTimestampMonotonic(t *testing.T) {
	newer := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-48 * time.Hour)

	var insertBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			// 既存行はより新しいタイムスタンプを持つ
			existing := []model.CachedPlace{{
				PlaceID:       "place-1",
				Name:          "Test Mosque",
				Latitude:      -27.47,
				Longitude:     153.02,
				LastFetchedAt: newer,
			}}
			require.NoError(t, json.NewEncoder(w).Encode(existing))
		case http.MethodPost:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&insertBody))
			w.Write([]byte("[]"))
		default:
			w.Write([]byte("[]"))
		}
	}))
	defer server.Close()

	repo := newTestSupabaseRepo(t, server.URL)
	place := &model.CachedPlace{
		PlaceID:       "place-1",
		Name:          "Test Mosque",
		Latitude:      -27.47,
		Longitude:     153.02,
		LastFetchedAt: older,
	}
	require.NoError(t, repo.Upsert(context.Background(), place))
	require.NotNil(t, insertBody)

	t.Run("location列はGeoJSONとして明示的に送られる", func(t *testing.T) {
		location, ok := insertBody["location"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Point", location["type"])

		coords, ok := location["coordinates"].([]any)
		require.True(t, ok)
		require.Len(t, coords, 2)
		assert.InDelta(t, 153.02, coords[0].(float64), 1e-9)
		assert.InDelta(t, -27.47, coords[1].(float64), 1e-9)
	})

	t.Run("既存行の方が新しい場合はタイムスタンプを巻き戻さない", func(t *testing.T) {
		assert.Equal(t, newer.Format(time.RFC3339), insertBody["last_fetched_at"])
	})
}

func TestSupabasePlacesRepository_TouchLastFetchedIsMonotonic(t *testing.T) {
	current := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	patchCount := 0
	var patchBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("place_id") == "eq.place-missing" {
				w.Write([]byte("[]"))
				return
			}
			existing := []model.CachedPlace{{
				PlaceID:       "place-1",
				Name:          "Test Mosque",
				Latitude:      -27.47,
				Longitude:     153.02,
				LastFetchedAt: current,
			}}
			require.NoError(t, json.NewEncoder(w).Encode(existing))
		case http.MethodPatch:
			patchCount++
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patchBody))
			w.Write([]byte("[]"))
		default:
			w.Write([]byte("[]"))
		}
	}))
	defer server.Close()

	repo := newTestSupabaseRepo(t, server.URL)

	t.Run("古いタイムスタンプでは更新しない", func(t *testing.T) {
		err := repo.TouchLastFetched(context.Background(), "place-1", current.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, patchCount)
	})

	t.Run("新しいタイムスタンプのみ書き込む", func(t *testing.T) {
		next := current.Add(time.Hour)
		err := repo.TouchLastFetched(context.Background(), "place-1", next)
		require.NoError(t, err)
		assert.Equal(t, 1, patchCount)
		assert.Equal(t, next.UTC().Format(time.RFC3339), patchBody["last_fetched_at"])
	})

	t.Run("存在しないplace_idはエラー", func(t *testing.T) {
		err := repo.TouchLastFetched(context.Background(), "place-missing", current.Add(time.Hour))
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrPlaceNotFound)
	})
}
