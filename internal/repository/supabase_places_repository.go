package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
	"MasjidFinder-App/internal/infrastructure/database"
)

// SupabasePlacesRepository PostgREST経由のキャッシュストア実装。
// PostgreSQL直接接続が使えない環境向けの代替実装で、地理検索は
// Supabase側に定義したRPC関数 nearby_cached_places に委譲する。
// location列は書き込み時にGeoJSONとして明示的に送る
type SupabasePlacesRepository struct {
	client *database.SupabaseClient
}

// supabasePlaceRow 書き込み用のペイロード。緯度経度カラムに加えて
// location列をGeoJSON Pointとして持つ
type supabasePlaceRow struct {
	model.CachedPlace
	Location *model.Geometry `json:"location"`
}

// NewSupabasePlacesRepository 新しいSupabasePlacesRepositoryインスタンスを作成
func NewSupabasePlacesRepository(client *database.SupabaseClient) repository.PlacesRepository {
	return &SupabasePlacesRepository{
		client: client,
	}
}

// GetByPlaceID 指定されたplace_idのエントリを取得する
func (r *SupabasePlacesRepository) GetByPlaceID(ctx context.Context, placeID string) (*model.CachedPlace, error) {
	var places []model.CachedPlace
	data, count, err := r.client.GetClient().From("cached_places").
		Select("*", "exact", false).
		Eq("place_id", placeID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("キャッシュ済みプレイスの取得に失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &places); err != nil {
		return nil, fmt.Errorf("プレイスデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(places) == 0 {
		return nil, fmt.Errorf("place_id %s: %w", placeID, model.ErrPlaceNotFound)
	}

	return &places[0], nil
}

// nearbyRPCParams nearby_cached_places RPC のパラメータ
type nearbyRPCParams struct {
	Lat          float64 `json:"search_lat"`
	Lng          float64 `json:"search_lng"`
	RadiusMeters int     `json:"radius_meters"`
	FetchedAfter string  `json:"fetched_after"`
}

// FindFreshWithinRadius RPC関数で半径・鮮度条件の検索を実行する（結果は距離昇順）
func (r *SupabasePlacesRepository) FindFreshWithinRadius(ctx context.Context, center model.LatLng, radiusMeters int, fetchedAfter time.Time) ([]model.CachedPlace, error) {
	params := nearbyRPCParams{
		Lat:          center.Lat,
		Lng:          center.Lng,
		RadiusMeters: radiusMeters,
		FetchedAfter: fetchedAfter.UTC().Format(time.RFC3339),
	}

	data := r.client.GetClient().Rpc("nearby_cached_places", "", params)
	if data == "" {
		return nil, fmt.Errorf("nearby_cached_places RPCの実行に失敗しました")
	}

	var places []model.CachedPlace
	if err := json.Unmarshal([]byte(data), &places); err != nil {
		return nil, fmt.Errorf("プレイスデータのJSONアンマーシャル失敗: %w", err)
	}

	return places, nil
}

// ListStale last_fetched_at が olderThan より古いエントリを古い順に取得する。
// limitで打ち切られても最古のエントリが取り残されないよう、並び順はサーバー側で保証する
func (r *SupabasePlacesRepository) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.CachedPlace, error) {
	var places []model.CachedPlace
	data, count, err := r.client.GetClient().From("cached_places").
		Select("*", "exact", false).
		Lt("last_fetched_at", olderThan.UTC().Format(time.RFC3339)).
		Order("last_fetched_at", &postgrest.OrderOpts{Ascending: true}).
		Limit(limit, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("古いエントリの取得に失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &places); err != nil {
		return nil, fmt.Errorf("プレイスデータのJSONアンマーシャル失敗: %w", err)
	}

	return places, nil
}

// Upsert place_idをキーにエントリを挿入または全体更新する。
// PostgRESTは式での更新を持たないため、last_fetched_at の単調非減少は
// 既存行を読んでクライアント側で保証する
func (r *SupabasePlacesRepository) Upsert(ctx context.Context, place *model.CachedPlace) error {
	if err := ValidatePlaceCoordinates(place); err != nil {
		return err
	}

	row := supabasePlaceRow{
		CachedPlace: *place,
		Location:    PlaceToGeometry(place),
	}

	// 既存行の方が新しい場合はタイムスタンプを巻き戻さない
	if existing, err := r.GetByPlaceID(ctx, place.PlaceID); err == nil && existing.LastFetchedAt.After(row.LastFetchedAt) {
		row.LastFetchedAt = existing.LastFetchedAt
	}

	_, _, err := r.client.GetClient().From("cached_places").
		Insert(row, true, "place_id", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("プレイスのアップサートに失敗: %w", err)
	}

	return nil
}

// TouchLastFetched 指定エントリの last_fetched_at のみを更新する。
// 既存行がより新しいタイムスタンプを持つ場合は何もしない（単調非減少）
func (r *SupabasePlacesRepository) TouchLastFetched(ctx context.Context, placeID string, fetchedAt time.Time) error {
	existing, err := r.GetByPlaceID(ctx, placeID)
	if err != nil {
		return err
	}
	if !fetchedAt.After(existing.LastFetchedAt) {
		return nil
	}

	payload := map[string]string{
		"last_fetched_at": fetchedAt.UTC().Format(time.RFC3339),
	}

	_, _, err = r.client.GetClient().From("cached_places").
		Update(payload, "", "").
		Eq("place_id", placeID).
		Execute()
	if err != nil {
		return fmt.Errorf("last_fetched_atの更新に失敗: %w", err)
	}

	return nil
}
