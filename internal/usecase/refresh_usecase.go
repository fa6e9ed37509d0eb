package usecase

import (
	"context"
	"time"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/service"
)

type RefreshUseCase interface {
	// RunSweep 差分リフレッシュを実行して結果サマリーを返す。エラーは返さない
	RunSweep(ctx context.Context, staleThreshold time.Duration) *model.RefreshStats
}

// refreshUseCaseImpl RefreshUseCaseの実装
type refreshUseCaseImpl struct {
	refreshService service.DifferentialRefreshService
}

// NewRefreshUseCase 新しいRefreshUseCaseインスタンスを作成
func NewRefreshUseCase(refreshService service.DifferentialRefreshService) RefreshUseCase {
	return &refreshUseCaseImpl{
		refreshService: refreshService,
	}
}

// RunSweep 閾値が未指定（0以下）の場合はデフォルト値で実行する
func (u *refreshUseCaseImpl) RunSweep(ctx context.Context, staleThreshold time.Duration) *model.RefreshStats {
	if staleThreshold <= 0 {
		staleThreshold = model.RefreshStaleThreshold
	}
	return u.refreshService.RunSweep(ctx, staleThreshold)
}
