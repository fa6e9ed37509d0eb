package repository

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"MasjidFinder-App/internal/domain/model"
)

// PlaceToWKT CachedPlace の座標を PostGIS 書き込み用の WKT 文字列に変換
func PlaceToWKT(place *model.CachedPlace) string {
	point := orb.Point{place.Longitude, place.Latitude}
	return wkt.MarshalString(point)
}

// PlaceToGeometry CachedPlace の座標を PostgREST 書き込み用の GeoJSON Point に変換
func PlaceToGeometry(place *model.CachedPlace) *model.Geometry {
	point := orb.Point{place.Longitude, place.Latitude}

	location := model.Location{
		Latitude:  point.Lat(),
		Longitude: point.Lon(),
	}
	return location.ToGeometry()
}

// ValidatePlaceCoordinates 保存前の座標チェック。不正な座標のエントリは保存せず破棄する
func ValidatePlaceCoordinates(place *model.CachedPlace) error {
	if !place.ToLatLng().IsValid() {
		return fmt.Errorf("place_id %s の座標が不正です (lat=%f, lng=%f): %w",
			place.PlaceID, place.Latitude, place.Longitude, model.ErrMissingCoordinates)
	}
	return nil
}
