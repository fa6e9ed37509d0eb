package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"MasjidFinder-App/internal/domain/model"
)

// nearbyFieldMask nearby-searchで取得するフィールドの明示的なマスク。
// レスポンスサイズとコストを抑えるため必要なフィールドのみ指定する
const nearbyFieldMask = "places.id,places.displayName,places.formattedAddress,places.location," +
	"places.rating,places.userRatingCount,places.businessStatus,places.nationalPhoneNumber," +
	"places.websiteUri,places.editorialSummary,places.regularOpeningHours,places.currentOpeningHours,places.photos"

// detailFieldMask 単一プレイス詳細取得用のフィールドマスク（places. プレフィックスなし）
const detailFieldMask = "id,displayName,formattedAddress,location," +
	"rating,userRatingCount,businessStatus,nationalPhoneNumber," +
	"websiteUri,editorialSummary,regularOpeningHours,currentOpeningHours,photos"

// maxResultCount nearby-searchの最大取得件数（Places API (New) の上限）
const maxResultCount = 20

// GooglePlacesProvider Google Places API (New) を使用した上流プレイス検索の実装。
// 純粋なI/O境界であり、キャッシュ判断・リトライは行わない
type GooglePlacesProvider struct {
	apiKey        string
	includedTypes []string
	baseURL       string
	httpClient    *http.Client
}

// NewGooglePlacesProvider 新しいプロバイダを生成する。
// includedTypes が空の場合はデフォルト（mosque）で検索する
func NewGooglePlacesProvider(apiKey string, includedTypes []string) *GooglePlacesProvider {
	if len(includedTypes) == 0 {
		includedTypes = model.DefaultIncludedTypes()
	}
	return &GooglePlacesProvider{
		apiKey:        apiKey,
		includedTypes: includedTypes,
		baseURL:       "https://places.googleapis.com/v1",
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

// nearbySearchRequest places:searchNearby のリクエストボディ
type nearbySearchRequest struct {
	IncludedTypes       []string            `json:"includedTypes"`
	MaxResultCount      int                 `json:"maxResultCount"`
	LocationRestriction locationRestriction `json:"locationRestriction"`
}

type locationRestriction struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center model.RawLatLng `json:"center"`
	Radius float64         `json:"radius"`
}

// nearbySearchResponse places:searchNearby のレスポンスボディ
type nearbySearchResponse struct {
	Places []model.RawPlace `json:"places"`
}

// FetchNearby 中心点と半径でnearby-searchを実行し、生のプレイス情報を返す
func (g *GooglePlacesProvider) FetchNearby(ctx context.Context, center model.LatLng, radiusMeters int) ([]model.RawPlace, error) {
	reqBody := nearbySearchRequest{
		IncludedTypes:  g.includedTypes,
		MaxResultCount: maxResultCount,
		LocationRestriction: locationRestriction{
			Circle: circle{
				Center: model.RawLatLng{Latitude: center.Lat, Longitude: center.Lng},
				Radius: float64(radiusMeters),
			},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディの構築に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/places:searchNearby", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	g.setAuthHeaders(req, nearbyFieldMask)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nearby-searchのAPIリクエストに失敗: %w: %v", model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// 上流のステータスとエラーペイロードをそのまま呼び出し側へ伝える
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status=%d body=%s", model.ErrUpstreamUnavailable, resp.StatusCode, string(payload))
	}

	var apiResp nearbySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: JSONのパースに失敗: %v", model.ErrUpstreamUnavailable, err)
	}

	return apiResp.Places, nil
}

// FetchByID place_id指定で単一プレイスの詳細を取得する
func (g *GooglePlacesProvider) FetchByID(ctx context.Context, placeID string) (*model.RawPlace, error) {
	if placeID == "" {
		return nil, fmt.Errorf("place_idが空です")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"/places/"+placeID, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	g.setAuthHeaders(req, detailFieldMask)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("詳細取得のAPIリクエストに失敗: %w: %v", model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: place_id=%s", model.ErrPlaceNotFound, placeID)
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status=%d body=%s", model.ErrUpstreamUnavailable, resp.StatusCode, string(payload))
	}

	var raw model.RawPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: JSONのパースに失敗: %v", model.ErrUpstreamUnavailable, err)
	}

	return &raw, nil
}

// setAuthHeaders APIキーとフィールドマスクのヘッダーを設定する
func (g *GooglePlacesProvider) setAuthHeaders(req *http.Request, fieldMask string) {
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)
}
