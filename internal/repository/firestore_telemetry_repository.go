package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
)

// telemetryCollection テレメトリログを保存するFirestoreコレクション名
const telemetryCollection = "apiCallLogs"

// FirestoreTelemetryRepository Firestoreを使用した追記専用テレメトリログの実装
type FirestoreTelemetryRepository struct {
	client *firestore.Client
}

// NewFirestoreTelemetryRepository 新しいFirestoreTelemetryRepositoryインスタンスを作成
func NewFirestoreTelemetryRepository(client *firestore.Client) repository.TelemetryRepository {
	return &FirestoreTelemetryRepository{
		client: client,
	}
}

// Append テレメトリ記録を1件追記する。IDとタイムスタンプが未設定の場合はここで補完する
func (r *FirestoreTelemetryRepository) Append(ctx context.Context, entry *model.APICallLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := r.client.Collection(telemetryCollection).Doc(entry.ID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("テレメトリ記録の保存に失敗: %w", err)
	}

	return nil
}
