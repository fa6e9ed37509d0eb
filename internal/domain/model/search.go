package model

// SearchRequest モスク検索のリクエストパラメータ
type SearchRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters int     `json:"radius_meters"`
}

// Center 検索中心点を LatLng 型で返す
func (r *SearchRequest) Center() LatLng {
	return LatLng{Lat: r.Latitude, Lng: r.Longitude}
}

// Validate リクエストパラメータの妥当性をチェックする。
// I/O実行前に呼び出し、不正な場合は ErrInvalidSearchParams を返す
func (r *SearchRequest) Validate() error {
	if !r.Center().IsValid() {
		return ErrInvalidSearchParams
	}
	if r.RadiusMeters <= 0 {
		return ErrInvalidSearchParams
	}
	return nil
}

// SearchResult 検索サービスの結果（距離昇順のランキング済み結果とキャッシュヒットフラグ）
type SearchResult struct {
	Places   []RankedPlace `json:"places"`
	CacheHit bool          `json:"cache_hit"`
}

// PlaceResponse APIレスポンス用のモスク情報
type PlaceResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	DistanceKm float64  `json:"distanceKm"`
	Rating     *float64 `json:"rating,omitempty"`
	IsOpenNow  *bool    `json:"isOpenNow,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Website    *string  `json:"website,omitempty"`
	PhotoURL   *string  `json:"photoUrl,omitempty"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
}

// SearchMeta 検索レスポンスのメタ情報
type SearchMeta struct {
	Count          int   `json:"count"`
	CacheHit       bool  `json:"cacheHit"`
	ResponseTimeMs int64 `json:"responseTimeMs"`
}

// SearchResponse モスク検索APIのレスポンス
type SearchResponse struct {
	Places []PlaceResponse `json:"places"`
	Meta   SearchMeta      `json:"meta"`
}

// ToPlaceResponse RankedPlace をAPIレスポンス用に変換
func (p *RankedPlace) ToPlaceResponse() PlaceResponse {
	return PlaceResponse{
		ID:         p.PlaceID,
		Name:       p.Name,
		Address:    p.FormattedAddress,
		DistanceKm: p.DistanceKm,
		Rating:     p.Rating,
		IsOpenNow:  p.IsOpenNow,
		Phone:      p.Phone,
		Website:    p.Website,
		PhotoURL:   p.PhotoURL,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
	}
}
