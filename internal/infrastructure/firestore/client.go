package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreClient テレメトリログ用のFirestoreクライアントラッパー
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient 新しいFirestoreクライアントを作成する
func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	var client *firestore.Client
	var err error

	// Cloud Run環境の検出
	isCloudRun := os.Getenv("K_SERVICE") != ""

	if isCloudRun {
		// Cloud Run環境ではデフォルト認証を使用
		log.Printf("☁️ Cloud Run環境: デフォルト認証を使用")
		client, err = firestore.NewClient(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
		}
	} else {
		// ローカル環境では環境変数またはファイルから認証
		credentialsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")

		if credentialsFile != "" {
			if _, fileErr := os.Stat(credentialsFile); fileErr == nil {
				log.Printf("📄 Using credentials file: %s", credentialsFile)
				client, err = firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
			} else {
				log.Printf("⚠️ Credentials file not found: %s, trying with default authentication", credentialsFile)
				client, err = firestore.NewClient(ctx, projectID)
			}
		} else {
			client, err = firestore.NewClient(ctx, projectID)
		}

		if err != nil {
			return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
		}
	}

	log.Printf("✅ Firestore client initialized for project: %s", projectID)
	return &FirestoreClient{client: client}, nil
}

// Close Firestore接続を閉じる
func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

// GetClient Firestoreクライアントを取得
func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
