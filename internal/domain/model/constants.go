package model

import "time"

// キャッシュ鮮度に関する定数
const (
	// FreshnessWindow この期間内に取得したエントリは上流を呼ばずにそのまま返す
	FreshnessWindow = 30 * 24 * time.Hour

	// RefreshStaleThreshold 差分リフレッシュの対象となる経過時間
	RefreshStaleThreshold = 7 * 24 * time.Hour

	// RefreshInterItemDelay 上流レート制限対策のアイテム間待機時間
	RefreshInterItemDelay = 100 * time.Millisecond
)

// 上流API呼び出しの推定コスト（USD、Places API (New) のSKU単価）
const (
	CostNearbySearch = 0.032
	CostPlaceDetails = 0.017
)

// 検索対象のプレイスタイプ定数
const (
	PlaceTypeMosque         = "mosque"
	PlaceTypePlaceOfWorship = "place_of_worship"
)

// DefaultIncludedTypes 上流のnearby-searchで絞り込むデフォルトのタイプ一覧
func DefaultIncludedTypes() []string {
	return []string{PlaceTypeMosque}
}

// 営業ステータス定数（上流の businessStatus に準拠）
const (
	BusinessStatusOperational       = "OPERATIONAL"
	BusinessStatusClosedTemporarily = "CLOSED_TEMPORARILY"
	BusinessStatusClosedPermanently = "CLOSED_PERMANENTLY"
)
