package repository

import (
	"context"
	"time"

	"MasjidFinder-App/internal/domain/model"
)

// PlacesRepository キャッシュ済みプレイスの永続化ストア。
// 書き込みはすべて place_id をキーとしたアップサートで、同一キーの重複行は発生しない
type PlacesRepository interface {
	// GetByPlaceID 指定されたplace_idのエントリを取得する。存在しない場合は model.ErrPlaceNotFound
	GetByPlaceID(ctx context.Context, placeID string) (*model.CachedPlace, error)

	// FindFreshWithinRadius 中心点から半径radiusMeters以内かつ last_fetched_at >= fetchedAfter の
	// エントリを距離昇順で取得する
	FindFreshWithinRadius(ctx context.Context, center model.LatLng, radiusMeters int, fetchedAfter time.Time) ([]model.CachedPlace, error)

	// Upsert place_idをキーにエントリを挿入または全体更新する
	Upsert(ctx context.Context, place *model.CachedPlace) error

	// ListStale last_fetched_at が olderThan より古いエントリを古い順に取得する
	ListStale(ctx context.Context, olderThan time.Time, limit int) ([]model.CachedPlace, error)

	// TouchLastFetched 指定エントリの last_fetched_at のみを更新する（差分なしリフレッシュ用）
	TouchLastFetched(ctx context.Context, placeID string, fetchedAt time.Time) error
}
