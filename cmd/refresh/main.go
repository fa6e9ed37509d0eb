package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"MasjidFinder-App/internal/config"
	"MasjidFinder-App/internal/domain/helper"
	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/domain/repository"
	"MasjidFinder-App/internal/domain/service"
	"MasjidFinder-App/internal/infrastructure/database"
	"MasjidFinder-App/internal/infrastructure/firestore"
	"MasjidFinder-App/internal/infrastructure/maps"
	repoImpl "MasjidFinder-App/internal/repository"
	"MasjidFinder-App/internal/usecase"
)

// 差分リフレッシュのスタンドアロン実行バイナリ。
// Cloud Schedulerなどの外部cronから週次で起動されることを想定している
func main() {
	staleDays := flag.Int("stale-days", 0, "リフレッシュ対象とする経過日数（デフォルト: 7日）")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx := context.Background()

	var placesRepo repository.PlacesRepository
	switch cfg.CacheBackend {
	case config.CacheBackendSupabase:
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}
		placesRepo = repoImpl.NewSupabasePlacesRepository(supabaseClient)
	default:
		dbClient, err := database.NewPostgreSQLClient(cfg.SupabaseURL, cfg.SupabaseDBPassword)
		if err != nil {
			log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
		}
		defer dbClient.Close()
		placesRepo = repoImpl.NewPostgresPlacesRepository(dbClient)
	}

	fsClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatalf("Firestoreクライアント初期化失敗: %v", err)
	}
	defer fsClient.Close()
	telemetryRepo := repoImpl.NewFirestoreTelemetryRepository(fsClient.GetClient())
	provider := maps.NewGooglePlacesProvider(cfg.GoogleMapsAPIKey, cfg.IncludedTypes)
	normalizer := helper.NewPlaceNormalizer(cfg.GoogleMapsAPIKey)

	refreshService := service.NewDifferentialRefreshService(placesRepo, provider, telemetryRepo, normalizer)
	refreshUseCase := usecase.NewRefreshUseCase(refreshService)

	staleThreshold := model.RefreshStaleThreshold
	if *staleDays > 0 {
		staleThreshold = time.Duration(*staleDays) * 24 * time.Hour
	}

	stats := refreshUseCase.RunSweep(ctx, staleThreshold)
	fmt.Printf("対象: %d件, 更新: %d, 変更なし: %d, 失敗: %d, 推定コスト: $%.3f\n",
		stats.Total, stats.Updated, stats.Unchanged, stats.Errors, stats.EstimatedCost)
}
