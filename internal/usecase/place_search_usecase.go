package usecase

import (
	"context"
	"time"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/service"
)

type PlaceSearchUseCase interface {
	// SearchNearby 検索を実行し、APIレスポンス形式（メタ情報付き）で返す
	SearchNearby(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error)
}

// placeSearchUseCaseImpl PlaceSearchUseCaseの実装
type placeSearchUseCaseImpl struct {
	searchService service.PlaceSearchService
}

// NewPlaceSearchUseCase 新しいPlaceSearchUseCaseインスタンスを作成
func NewPlaceSearchUseCase(searchService service.PlaceSearchService) PlaceSearchUseCase {
	return &placeSearchUseCaseImpl{
		searchService: searchService,
	}
}

// SearchNearby 検索サービスを呼び出し、レスポンスモデルとメタ情報を組み立てる
func (u *placeSearchUseCaseImpl) SearchNearby(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	start := time.Now()

	result, err := u.searchService.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	places := make([]model.PlaceResponse, 0, len(result.Places))
	for i := range result.Places {
		places = append(places, result.Places[i].ToPlaceResponse())
	}

	return &model.SearchResponse{
		Places: places,
		Meta: model.SearchMeta{
			Count:          len(places),
			CacheHit:       result.CacheHit,
			ResponseTimeMs: time.Since(start).Milliseconds(),
		},
	}, nil
}
