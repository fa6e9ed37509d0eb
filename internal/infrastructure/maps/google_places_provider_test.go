package maps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MasjidFinder-App/internal/domain/model"
)

func newTestProvider(serverURL string) *GooglePlacesProvider {
	provider := NewGooglePlacesProvider("test-api-key", nil)
	provider.baseURL = serverURL
	return provider
}

func TestGooglePlacesProvider_FetchNearby(t *testing.T) {
	var capturedRequest nearbySearchRequest
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		capturedHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedRequest))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"places":[
			{"id":"place-1","displayName":{"text":"Holland Park Mosque"},"formattedAddress":"309 Nursery Rd, Holland Park, QLD 4121, Australia","location":{"latitude":-27.5255,"longitude":153.0697},"rating":4.7},
			{"id":"place-2","displayName":{"text":"Kuraby Mosque"},"location":{"latitude":-27.6066,"longitude":153.0939}}
		]}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	places, err := provider.FetchNearby(context.Background(), model.LatLng{Lat: -27.47, Lng: 153.02}, 5000)
	require.NoError(t, err)
	require.Len(t, places, 2)

	t.Run("認証ヘッダーとフィールドマスクが送信される", func(t *testing.T) {
		assert.Equal(t, "test-api-key", capturedHeaders.Get("X-Goog-Api-Key"))
		assert.Equal(t, nearbyFieldMask, capturedHeaders.Get("X-Goog-FieldMask"))
		assert.Equal(t, "application/json", capturedHeaders.Get("Content-Type"))
	})

	t.Run("リクエストボディに検索条件が反映される", func(t *testing.T) {
		assert.Equal(t, model.DefaultIncludedTypes(), capturedRequest.IncludedTypes)
		assert.Equal(t, maxResultCount, capturedRequest.MaxResultCount)
		assert.InDelta(t, -27.47, capturedRequest.LocationRestriction.Circle.Center.Latitude, 1e-9)
		assert.InDelta(t, 153.02, capturedRequest.LocationRestriction.Circle.Center.Longitude, 1e-9)
		assert.InDelta(t, 5000.0, capturedRequest.LocationRestriction.Circle.Radius, 1e-9)
	})

	t.Run("レスポンスが生のままパースされる", func(t *testing.T) {
		assert.Equal(t, "place-1", places[0].ID)
		assert.Equal(t, "Holland Park Mosque", places[0].GetDisplayName())
		require.NotNil(t, places[0].Rating)
		assert.InDelta(t, 4.7, *places[0].Rating, 1e-9)
		assert.Equal(t, "place-2", places[1].ID)
	})
}

func TestGooglePlacesProvider_FetchNearbyPropagatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	places, err := provider.FetchNearby(context.Background(), model.LatLng{Lat: -27.47, Lng: 153.02}, 5000)

	require.Error(t, err)
	assert.Nil(t, places)
	assert.True(t, errors.Is(err, model.ErrUpstreamUnavailable))
	// 上流のステータスとペイロードをそのまま伝える（リトライ・変換はしない）
	assert.Contains(t, err.Error(), "status=429")
	assert.Contains(t, err.Error(), "RESOURCE_EXHAUSTED")
}

func TestGooglePlacesProvider_FetchByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/places/place-1", r.URL.Path)
		// 単一取得では places. プレフィックスなしのマスクを使う
		assert.Equal(t, detailFieldMask, r.Header.Get("X-Goog-FieldMask"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-Goog-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"place-1","displayName":{"text":"Holland Park Mosque"},"location":{"latitude":-27.5255,"longitude":153.0697},"nationalPhoneNumber":"(07) 3848 5675"}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	raw, err := provider.FetchByID(context.Background(), "place-1")
	require.NoError(t, err)
	assert.Equal(t, "place-1", raw.ID)
	assert.Equal(t, "Holland Park Mosque", raw.GetDisplayName())
	require.NotNil(t, raw.NationalPhone)
	assert.Equal(t, "(07) 3848 5675", *raw.NationalPhone)
}

func TestGooglePlacesProvider_FetchByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"status":"NOT_FOUND"}}`))
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	raw, err := provider.FetchByID(context.Background(), "place-gone")

	require.Error(t, err)
	assert.Nil(t, raw)
	assert.True(t, errors.Is(err, model.ErrPlaceNotFound))
	assert.Contains(t, err.Error(), "place-gone")
}

func TestGooglePlacesProvider_FetchByIDRejectsEmptyID(t *testing.T) {
	provider := newTestProvider("http://unused.invalid")
	_, err := provider.FetchByID(context.Background(), "")
	require.Error(t, err)
}
