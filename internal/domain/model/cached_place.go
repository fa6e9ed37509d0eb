package model

import "time"

// LatLng 緯度経度を表す基本的な型（検索中心点などで使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid WGS84として有効な座標かチェック
func (l LatLng) IsValid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Location ジオメトリ変換用の位置情報
type Location struct {
	Latitude  float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// ToGeometry Location を PostGIS GEOMETRY 型に変換
func (l *Location) ToGeometry() *Geometry {
	return &Geometry{
		Type:        "Point",
		Coordinates: []float64{l.Longitude, l.Latitude},
	}
}

// Geometry PostGIS GEOMETRY 型に対応する構造体
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
}

// OpeningHours 週単位の営業時間（Google Places APIの構造に準拠）
type OpeningHours struct {
	OpenNow             *bool    `json:"open_now,omitempty"`
	WeekdayDescriptions []string `json:"weekday_descriptions,omitempty"`
}

// CachedPlace キャッシュ済みモスク情報を表すモデル。place_id（Google Places ID）ごとに1行
type CachedPlace struct {
	PlaceID          string        `json:"place_id" db:"place_id"`                   // Google Places の外部ID（不変・一意）
	Name             string        `json:"name" db:"name"`                           // 表示名
	Latitude         float64       `json:"latitude" db:"latitude"`                   // 緯度（必須）
	Longitude        float64       `json:"longitude" db:"longitude"`                 // 経度（必須）
	FormattedAddress string        `json:"formatted_address" db:"formatted_address"` // 整形済み住所
	Suburb           *string       `json:"suburb,omitempty" db:"suburb"`             // 住所パースで得た地区（NULLABLE）
	Region           *string       `json:"region,omitempty" db:"region"`             // 州・県コード（NULLABLE）
	PostalCode       *string       `json:"postal_code,omitempty" db:"postal_code"`   // 郵便番号（NULLABLE）
	Phone            *string       `json:"phone,omitempty" db:"phone"`               // 電話番号（NULLABLE）
	Website          *string       `json:"website,omitempty" db:"website"`           // ウェブサイト（NULLABLE）
	EditorialSummary *string       `json:"editorial_summary,omitempty" db:"editorial_summary"`
	Rating           *float64      `json:"rating,omitempty" db:"rating"`             // 評価値 0〜5（NULLABLE）
	ReviewCount      *int          `json:"review_count,omitempty" db:"review_count"` // レビュー数（NULLABLE）
	BusinessStatus   *string       `json:"business_status,omitempty" db:"business_status"`
	IsOpenNow        *bool         `json:"is_open_now,omitempty" db:"is_open_now"` // 取得時点の営業中スナップショット
	OpeningHours     *OpeningHours `json:"opening_hours,omitempty" db:"opening_hours"`
	PhotoURL         *string       `json:"photo_url,omitempty" db:"photo_url"`       // 先頭写真の取得可能URL
	PhotoRefs        []string      `json:"photo_refs,omitempty" db:"photo_refs"`     // 全写真リファレンス
	LastFetchedAt    time.Time     `json:"last_fetched_at" db:"last_fetched_at"`     // 最後に上流で確認できた時刻
}

// ToLatLng CachedPlace の位置情報を LatLng 型に変換
func (p *CachedPlace) ToLatLng() LatLng {
	return LatLng{Lat: p.Latitude, Lng: p.Longitude}
}

// GetRating 評価値が存在する場合は値を、存在しない場合は0を返す
func (p *CachedPlace) GetRating() float64 {
	if p.Rating != nil {
		return *p.Rating
	}
	return 0
}

// HasPhoto 表示用の写真URLが設定されているかチェック
func (p *CachedPlace) HasPhoto() bool {
	return p.PhotoURL != nil && *p.PhotoURL != ""
}

// FieldsDiffer 差分リフレッシュで比較対象となるフィールドのいずれかが other と異なるかを返す。
// 比較対象: 名前・住所・電話・ウェブサイト・評価値・レビュー数・営業中フラグ・営業ステータス
func (p *CachedPlace) FieldsDiffer(other *CachedPlace) bool {
	if p.Name != other.Name || p.FormattedAddress != other.FormattedAddress {
		return true
	}
	if !stringPtrEqual(p.Phone, other.Phone) || !stringPtrEqual(p.Website, other.Website) {
		return true
	}
	if !float64PtrEqual(p.Rating, other.Rating) || !intPtrEqual(p.ReviewCount, other.ReviewCount) {
		return true
	}
	if !boolPtrEqual(p.IsOpenNow, other.IsOpenNow) || !stringPtrEqual(p.BusinessStatus, other.BusinessStatus) {
		return true
	}
	return false
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// RankedPlace 検索中心点からの距離付きのキャッシュ済みモスク情報
type RankedPlace struct {
	CachedPlace
	DistanceKm float64 `json:"distance_km"` // 検索中心点からのHaversine距離（km）
}
