package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"MasjidFinder-App/internal/domain/helper"
	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
)

// staleScanLimit 1回のスイープで処理する最大エントリ数
const staleScanLimit = 500

type DifferentialRefreshService interface {
	// RunSweep staleThresholdより古いエントリを古い順に再取得し、差分があれば全体更新、
	// なければ last_fetched_at のみ更新する。呼び出し元にエラーは返さず、
	// 常に完走して件数を報告する
	RunSweep(ctx context.Context, staleThreshold time.Duration) *model.RefreshStats
}

// differentialRefreshServiceImpl DifferentialRefreshServiceの実装
type differentialRefreshServiceImpl struct {
	placesRepo     repository.PlacesRepository
	provider       repository.PlacesProvider
	telemetryRepo  repository.TelemetryRepository
	normalizer     *helper.PlaceNormalizer
	interItemDelay time.Duration
	now            func() time.Time
}

// NewDifferentialRefreshService 新しいDifferentialRefreshServiceインスタンスを作成
func NewDifferentialRefreshService(
	placesRepo repository.PlacesRepository,
	provider repository.PlacesProvider,
	telemetryRepo repository.TelemetryRepository,
	normalizer *helper.PlaceNormalizer,
) DifferentialRefreshService {
	return &differentialRefreshServiceImpl{
		placesRepo:     placesRepo,
		provider:       provider,
		telemetryRepo:  telemetryRepo,
		normalizer:     normalizer,
		interItemDelay: model.RefreshInterItemDelay,
		now:            time.Now,
	}
}

// RunSweep 差分リフレッシュを実行する。
// 上流のレート制限を守るため、アイテムは意図的に逐次処理する（並行化しない）
func (s *differentialRefreshServiceImpl) RunSweep(ctx context.Context, staleThreshold time.Duration) *model.RefreshStats {
	start := s.now()
	stats := &model.RefreshStats{}

	olderThan := start.Add(-staleThreshold)
	stalePlaces, err := s.placesRepo.ListStale(ctx, olderThan, staleScanLimit)
	if err != nil {
		log.Printf("❌ 古いエントリの取得に失敗、スイープを中止: %v", err)
		stats.Duration = s.now().Sub(start)
		return stats
	}

	stats.Total = len(stalePlaces)
	log.Printf("🚀 差分リフレッシュ開始 (対象: %d件, 閾値: %v)", stats.Total, staleThreshold)

	for i := range stalePlaces {
		if ctx.Err() != nil {
			log.Printf("⚠️ コンテキストがキャンセルされたため、スイープを中断します")
			break
		}

		// アイテム間の固定待機（先頭アイテムの前には不要）
		if i > 0 {
			time.Sleep(s.interItemDelay)
		}

		if err := s.refreshOne(ctx, &stalePlaces[i], stats); err != nil {
			stats.Errors++
			// 失敗したアイテムは last_fetched_at を据え置き、次回スイープで再試行される
			log.Printf("⚠️ リフレッシュに失敗 (place_id: %s): %v", stalePlaces[i].PlaceID, err)
		}
	}

	stats.Duration = s.now().Sub(start)
	log.Printf("✅ 差分リフレッシュ完了 (更新: %d, 変更なし: %d, 失敗: %d, 推定コスト: $%.3f, 所要時間: %v)",
		stats.Updated, stats.Unchanged, stats.Errors, stats.EstimatedCost, stats.Duration)

	// スイープ全体で集約テレメトリを1件だけ記録する（ログ量を抑えるため、アイテムごとには記録しない）
	s.appendSweepTelemetry(ctx, stats)

	return stats
}

// refreshOne 1件のエントリを上流から再取得し、比較対象フィールドに差分があれば全体を、
// なければタイムスタンプのみを永続化する
func (s *differentialRefreshServiceImpl) refreshOne(ctx context.Context, current *model.CachedPlace, stats *model.RefreshStats) error {
	raw, err := s.provider.FetchByID(ctx, current.PlaceID)
	stats.EstimatedCost += model.CostPlaceDetails
	if err != nil {
		return fmt.Errorf("詳細取得に失敗: %w", err)
	}

	fresh, err := s.normalizer.Normalize(raw)
	if err != nil {
		return fmt.Errorf("正規化に失敗: %w", err)
	}

	if current.FieldsDiffer(fresh) {
		// 差分あり: 比較対象フィールドに限らず全体を更新する
		if err := s.placesRepo.Upsert(ctx, fresh); err != nil {
			return fmt.Errorf("更新の保存に失敗: %w", err)
		}
		stats.Updated++
		return nil
	}

	// 差分なし: last_fetched_at のみ進める。これも鮮度上はリフレッシュ成功として扱う
	if err := s.placesRepo.TouchLastFetched(ctx, current.PlaceID, fresh.LastFetchedAt); err != nil {
		return fmt.Errorf("タイムスタンプの更新に失敗: %w", err)
	}
	stats.Unchanged++
	return nil
}

// appendSweepTelemetry スイープの集約テレメトリを記録する。失敗してもスイープの結果には影響しない
func (s *differentialRefreshServiceImpl) appendSweepTelemetry(ctx context.Context, stats *model.RefreshStats) {
	entry := &model.APICallLog{
		CallKind:      model.CallKindRefreshSweep,
		EstimatedCost: stats.EstimatedCost,
		CacheHit:      false,
		LatencyMs:     stats.Duration.Milliseconds(),
		Success:       stats.Errors == 0,
		ResultCount:   stats.Total,
	}
	if stats.Errors > 0 {
		entry.ErrorDetail = fmt.Sprintf("%d件のアイテムでエラーが発生", stats.Errors)
	}

	if err := s.telemetryRepo.Append(ctx, entry); err != nil {
		log.Printf("⚠️ スイープテレメトリの追記に失敗: %v", err)
	}
}
