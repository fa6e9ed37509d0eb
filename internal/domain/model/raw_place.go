package model

// RawPlace Google Places API (New) から返される生のプレイス情報。
// 上流のレスポンスはオプショナルなフィールドが多いため、存在しない可能性のある
// フィールドはすべてポインタで表現し、正規化境界（helper.PlaceNormalizer）で
// 網羅的に処理する
type RawPlace struct {
	ID               string            `json:"id"`
	DisplayName      *LocalizedText    `json:"displayName,omitempty"`
	FormattedAddress string            `json:"formattedAddress"`
	Location         *RawLatLng        `json:"location,omitempty"`
	Rating           *float64          `json:"rating,omitempty"`
	UserRatingCount  *int              `json:"userRatingCount,omitempty"`
	BusinessStatus   *string           `json:"businessStatus,omitempty"`
	NationalPhone    *string           `json:"nationalPhoneNumber,omitempty"`
	WebsiteURI       *string           `json:"websiteUri,omitempty"`
	EditorialSummary *LocalizedText    `json:"editorialSummary,omitempty"`
	RegularHours     *RawOpeningHours  `json:"regularOpeningHours,omitempty"`
	CurrentHours     *RawOpeningHours  `json:"currentOpeningHours,omitempty"`
	Photos           []RawPhoto        `json:"photos,omitempty"`
}

// LocalizedText 言語コード付きテキスト
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// RawLatLng 上流レスポンスの座標
type RawLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RawOpeningHours 上流レスポンスの営業時間
type RawOpeningHours struct {
	OpenNow             *bool    `json:"openNow,omitempty"`
	WeekdayDescriptions []string `json:"weekdayDescriptions,omitempty"`
}

// RawPhoto 上流レスポンスの写真リファレンス
type RawPhoto struct {
	Name     string `json:"name"` // "places/{place_id}/photos/{ref}" 形式
	WidthPx  int    `json:"widthPx,omitempty"`
	HeightPx int    `json:"heightPx,omitempty"`
}

// GetDisplayName 表示名が存在する場合はテキストを、存在しない場合は空文字列を返す
func (r *RawPlace) GetDisplayName() string {
	if r.DisplayName != nil {
		return r.DisplayName.Text
	}
	return ""
}

// HasValidLocation 座標が存在し、WGS84として有効かチェック
func (r *RawPlace) HasValidLocation() bool {
	if r.Location == nil {
		return false
	}
	return LatLng{Lat: r.Location.Latitude, Lng: r.Location.Longitude}.IsValid()
}
