package repository

import (
	"context"

	"MasjidFinder-App/internal/domain/model"
)

// TelemetryRepository 上流API呼び出しの追記専用ログ。更新・削除のインターフェースは持たない
type TelemetryRepository interface {
	// Append テレメトリ記録を1件追記する
	Append(ctx context.Context, entry *model.APICallLog) error
}
