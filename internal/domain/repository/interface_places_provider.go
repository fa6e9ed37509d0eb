package repository

import (
	"context"

	"MasjidFinder-App/internal/domain/model"
)

// PlacesProvider 上流プレイス検索プロバイダの純粋なI/O境界。
// キャッシュ判断やリトライは呼び出し側の責務で、この層では行わない
type PlacesProvider interface {
	// FetchNearby 中心点と半径でnearby-searchを実行し、生のプレイス情報を返す
	FetchNearby(ctx context.Context, center model.LatLng, radiusMeters int) ([]model.RawPlace, error)

	// FetchByID place_id指定で単一プレイスの詳細を取得する
	FetchByID(ctx context.Context, placeID string) (*model.RawPlace, error)
}
