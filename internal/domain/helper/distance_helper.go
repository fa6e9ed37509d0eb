package helper

import (
	"math"
	"sort"

	"MasjidFinder-App/internal/domain/model"
)

// earthRadiusKm 地球の平均半径（km）
const earthRadiusKm = 6371.0

// HaversineKm 2点間のHaversine大円距離をkm単位で計算する
func HaversineKm(from, to model.LatLng) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// RankByDistance 各プレイスに中心点からの距離を付与し、距離昇順で並べ替えて返す。
// 同距離の場合は入力順を維持する（安定ソート）
func RankByDistance(center model.LatLng, places []model.CachedPlace) []model.RankedPlace {
	ranked := make([]model.RankedPlace, 0, len(places))
	for _, p := range places {
		ranked = append(ranked, model.RankedPlace{
			CachedPlace: p,
			DistanceKm:  HaversineKm(center, p.ToLatLng()),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	return ranked
}
