package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"MasjidFinder-App/internal/domain/helper"
	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
)

// telemetryWriteTimeout 非同期テレメトリ書き込みのタイムアウト。
// リクエストのコンテキストとは独立させる（レスポンス返却後も書き込みを完了させるため）
const telemetryWriteTimeout = 5 * time.Second

type PlaceSearchService interface {
	// Search 中心点と半径で周辺のモスクを検索する。
	// キャッシュが新鮮なら上流を呼ばずに返し、そうでなければ上流から取得して
	// キャッシュに保存した上で距離昇順のランキング済み結果を返す
	Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error)
}

// placeSearchServiceImpl PlaceSearchServiceの実装
type placeSearchServiceImpl struct {
	placesRepo      repository.PlacesRepository
	provider        repository.PlacesProvider
	telemetryRepo   repository.TelemetryRepository
	normalizer      *helper.PlaceNormalizer
	freshnessWindow time.Duration
	now             func() time.Time
}

// NewPlaceSearchService 新しいPlaceSearchServiceインスタンスを作成
func NewPlaceSearchService(
	placesRepo repository.PlacesRepository,
	provider repository.PlacesProvider,
	telemetryRepo repository.TelemetryRepository,
	normalizer *helper.PlaceNormalizer,
) PlaceSearchService {
	return &placeSearchServiceImpl{
		placesRepo:      placesRepo,
		provider:        provider,
		telemetryRepo:   telemetryRepo,
		normalizer:      normalizer,
		freshnessWindow: model.FreshnessWindow,
		now:             time.Now,
	}
}

// Search キャッシュファーストの検索を実行する。テレメトリ記録は1回の呼び出しにつき必ず1件
func (s *placeSearchServiceImpl) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResult, error) {
	// I/O実行前のバリデーション。不正な入力はテレメトリにもコストにも残さない
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := s.now()
	center := req.Center()
	fetchedAfter := start.Add(-s.freshnessWindow)

	// Step 1: 鮮度条件を満たすキャッシュ済みエントリを半径内から探す
	cached, err := s.placesRepo.FindFreshWithinRadius(ctx, center, req.RadiusMeters, fetchedAfter)
	if err != nil {
		// キャッシュ読み込みの失敗は致命的ではない。上流取得へフォールバックする
		log.Printf("⚠️ キャッシュ読み込みに失敗、上流取得へフォールバック: %v", err)
		cached = nil
	}

	if len(cached) > 0 {
		ranked := helper.RankByDistance(center, cached)
		s.appendTelemetryAsync(&model.APICallLog{
			CallKind:      model.CallKindNearbySearch,
			EstimatedCost: 0,
			CacheHit:      true,
			LatencyMs:     s.now().Sub(start).Milliseconds(),
			Success:       true,
			ResultCount:   len(ranked),
		})
		return &model.SearchResult{Places: ranked, CacheHit: true}, nil
	}

	// Step 2: キャッシュミス。上流のnearby-searchを実行する
	rawPlaces, err := s.provider.FetchNearby(ctx, center, req.RadiusMeters)
	if err != nil {
		s.appendTelemetryAsync(&model.APICallLog{
			CallKind:      model.CallKindNearbySearch,
			EstimatedCost: model.CostNearbySearch,
			CacheHit:      false,
			LatencyMs:     s.now().Sub(start).Milliseconds(),
			Success:       false,
			ErrorDetail:   err.Error(),
		})
		return nil, fmt.Errorf("nearby-searchに失敗: %w", err)
	}

	// Step 3: アイテムごとに正規化・アップサート。各アイテムは独立していて冪等なので並行処理する。
	// 1件の失敗が他のアイテムの処理を妨げてはならない
	places := s.normalizeAndCacheAll(ctx, rawPlaces)

	ranked := helper.RankByDistance(center, places)
	s.appendTelemetryAsync(&model.APICallLog{
		CallKind:      model.CallKindNearbySearch,
		EstimatedCost: model.CostNearbySearch,
		CacheHit:      false,
		LatencyMs:     s.now().Sub(start).Milliseconds(),
		Success:       true,
		ResultCount:   len(ranked),
	})

	return &model.SearchResult{Places: ranked, CacheHit: false}, nil
}

// normalizeAndCacheAll 生の上流レスポンスを並行で正規化・アップサートし、有効なエントリを入力順で返す。
// 正規化に失敗したアイテムはスキップし、アップサートに失敗したアイテムは結果には含める
// （キャッシュ保存に失敗してもユーザーへの返却は可能なため）
func (s *placeSearchServiceImpl) normalizeAndCacheAll(ctx context.Context, rawPlaces []model.RawPlace) []model.CachedPlace {
	results := make([]*model.CachedPlace, len(rawPlaces))
	var wg sync.WaitGroup

	for i := range rawPlaces {
		wg.Add(1)
		go func(idx int, raw *model.RawPlace) {
			defer wg.Done()

			place, err := s.normalizer.Normalize(raw)
			if err != nil {
				log.Printf("⚠️ プレイスの正規化に失敗、スキップします: %v", err)
				return
			}

			if err := s.placesRepo.Upsert(ctx, place); err != nil {
				// 保存失敗でも結果には含める
				log.Printf("⚠️ プレイスのキャッシュ保存に失敗 (place_id: %s): %v", place.PlaceID, err)
			}

			results[idx] = place
		}(i, &rawPlaces[i])
	}

	wg.Wait()

	// 入力順を維持したまま有効なエントリだけを集める
	places := make([]model.CachedPlace, 0, len(rawPlaces))
	for _, place := range results {
		if place != nil {
			places = append(places, *place)
		}
	}
	return places
}

// appendTelemetryAsync テレメトリ記録を非同期で追記する。
// ユーザー向けパスをブロックしないが、失敗はログに残して観測可能にする
func (s *placeSearchServiceImpl) appendTelemetryAsync(entry *model.APICallLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryWriteTimeout)
		defer cancel()

		if err := s.telemetryRepo.Append(ctx, entry); err != nil {
			log.Printf("⚠️ テレメトリ記録の追記に失敗: %v", err)
		}
	}()
}
