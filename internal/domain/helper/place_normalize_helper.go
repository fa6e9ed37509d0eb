package helper

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"MasjidFinder-App/internal/domain/model"
)

// regionPostalPattern "QLD 4000" のような「州コード 郵便番号」形式にマッチするパターン
var regionPostalPattern = regexp.MustCompile(`^([A-Z]{2,3})\s+(\d{4})$`)

// photoMaxWidthPx 表示用写真URLの最大幅
const photoMaxWidthPx = 800

// PlaceNormalizer 上流の生レスポンスを正規化済みの CachedPlace に変換するヘルパー。
// 有効な入力に対しては決定的かつ全域的で、オプショナルなフィールドの欠落は
// そのまま「値なし」として扱う
type PlaceNormalizer struct {
	apiKey string // 写真URL構築用のAPIキー
}

// NewPlaceNormalizer 新しいPlaceNormalizerインスタンスを作成する
func NewPlaceNormalizer(apiKey string) *PlaceNormalizer {
	return &PlaceNormalizer{
		apiKey: apiKey,
	}
}

// Normalize RawPlace を CachedPlace に変換する。
// 座標が欠落または不正な場合のみエラーを返す（座標なしのエントリは保存しない）
func (n *PlaceNormalizer) Normalize(raw *model.RawPlace) (*model.CachedPlace, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("place_idが空です: %w", model.ErrMissingCoordinates)
	}
	if !raw.HasValidLocation() {
		return nil, fmt.Errorf("place_id %s: %w", raw.ID, model.ErrMissingCoordinates)
	}

	place := &model.CachedPlace{
		PlaceID:          raw.ID,
		Name:             raw.GetDisplayName(),
		Latitude:         raw.Location.Latitude,
		Longitude:        raw.Location.Longitude,
		FormattedAddress: raw.FormattedAddress,
		Rating:           raw.Rating,
		ReviewCount:      raw.UserRatingCount,
		BusinessStatus:   raw.BusinessStatus,
		Phone:            raw.NationalPhone,
		Website:          raw.WebsiteURI,
		LastFetchedAt:    time.Now().UTC(), // 上流のタイムスタンプではなく正規化時刻
	}

	if raw.EditorialSummary != nil && raw.EditorialSummary.Text != "" {
		summary := raw.EditorialSummary.Text
		place.EditorialSummary = &summary
	}

	n.applyAddressParts(place)
	n.applyOpeningHours(place, raw)
	n.applyPhotos(place, raw)

	return place, nil
}

// applyAddressParts 整形済み住所をカンマで分割し、地区・州・郵便番号をベストエフォートで抽出する。
// セグメントが3つ未満、または「州コード 郵便番号」形式にマッチしない場合は未設定のままにする
func (n *PlaceNormalizer) applyAddressParts(place *model.CachedPlace) {
	segments := strings.Split(place.FormattedAddress, ",")
	if len(segments) < 3 {
		return
	}

	suburb := strings.TrimSpace(segments[len(segments)-3])
	if suburb != "" {
		place.Suburb = &suburb
	}

	matches := regionPostalPattern.FindStringSubmatch(strings.TrimSpace(segments[len(segments)-2]))
	if matches != nil {
		region := matches[1]
		postalCode := matches[2]
		place.Region = &region
		place.PostalCode = &postalCode
	}
}

// applyOpeningHours 営業時間と営業中スナップショットを抽出する。
// currentOpeningHours を優先し、なければ regularOpeningHours を使用する
func (n *PlaceNormalizer) applyOpeningHours(place *model.CachedPlace, raw *model.RawPlace) {
	hours := raw.CurrentHours
	if hours == nil {
		hours = raw.RegularHours
	}
	if hours == nil {
		return
	}

	place.OpeningHours = &model.OpeningHours{
		OpenNow:             hours.OpenNow,
		WeekdayDescriptions: hours.WeekdayDescriptions,
	}
	place.IsOpenNow = hours.OpenNow
}

// applyPhotos 写真リファレンスを保持し、先頭の1枚を表示用URLに解決する
func (n *PlaceNormalizer) applyPhotos(place *model.CachedPlace, raw *model.RawPlace) {
	if len(raw.Photos) == 0 {
		return
	}

	refs := make([]string, 0, len(raw.Photos))
	for _, photo := range raw.Photos {
		refs = append(refs, photo.Name)
	}
	place.PhotoRefs = refs

	photoURL := fmt.Sprintf("https://places.googleapis.com/v1/%s/media?maxWidthPx=%d&key=%s",
		raw.Photos[0].Name, photoMaxWidthPx, n.apiKey)
	place.PhotoURL = &photoURL
}
