package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"MasjidFinder-App/internal/config"
	"MasjidFinder-App/internal/domain/helper"
	"MasjidFinder-App/internal/domain/repository"
	"MasjidFinder-App/internal/domain/service"
	"MasjidFinder-App/internal/handler"
	"MasjidFinder-App/internal/infrastructure/database"
	"MasjidFinder-App/internal/infrastructure/firestore"
	"MasjidFinder-App/internal/infrastructure/maps"
	repoImpl "MasjidFinder-App/internal/repository"
	"MasjidFinder-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("⚠️  環境変数が設定されていません:")
		fmt.Println("必要な環境変数: GOOGLE_MAPS_API_KEY, SUPABASE_URL, SUPABASE_DB_PASSWORD")
		fmt.Println("\n.envファイルを作成するか、環境変数を設定してください")
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx := context.Background()

	// キャッシュストアの初期化（直接接続のPostgreSQLか、PostgREST経由のSupabaseを選択）
	var placesRepo repository.PlacesRepository
	switch cfg.CacheBackend {
	case config.CacheBackendSupabase:
		fmt.Println("Initializing Supabase client...")
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			log.Fatalf("Supabaseクライアント初期化失敗: %v", err)
		}
		fmt.Println("✅ Supabase connection successful!")
		placesRepo = repoImpl.NewSupabasePlacesRepository(supabaseClient)
	default:
		fmt.Println("Initializing PostgreSQL client...")
		dbClient, err := database.NewPostgreSQLClient(cfg.SupabaseURL, cfg.SupabaseDBPassword)
		if err != nil {
			log.Fatalf("PostgreSQLクライアント初期化失敗: %v", err)
		}
		defer dbClient.Close()
		fmt.Println("✅ PostgreSQL connection successful!")

		if err := repoImpl.EnsureSchema(ctx, dbClient); err != nil {
			log.Fatalf("スキーマの初期化失敗: %v", err)
		}
		placesRepo = repoImpl.NewPostgresPlacesRepository(dbClient)
	}

	fmt.Println("Initializing Firestore client...")
	fsClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatalf("Firestoreクライアント初期化失敗: %v", err)
	}
	defer fsClient.Close()

	telemetryRepo := repoImpl.NewFirestoreTelemetryRepository(fsClient.GetClient())
	provider := maps.NewGooglePlacesProvider(cfg.GoogleMapsAPIKey, cfg.IncludedTypes)
	normalizer := helper.NewPlaceNormalizer(cfg.GoogleMapsAPIKey)

	searchService := service.NewPlaceSearchService(placesRepo, provider, telemetryRepo, normalizer)
	refreshService := service.NewDifferentialRefreshService(placesRepo, provider, telemetryRepo, normalizer)

	searchHandler := handler.NewPlaceSearchHandler(usecase.NewPlaceSearchUseCase(searchService))
	refreshHandler := handler.NewRefreshHandler(usecase.NewRefreshUseCase(refreshService))

	// Ginルーターの設定
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "MasjidFinder-App"})
	})
	router.GET("/api/mosques/search", searchHandler.SearchNearby)
	router.POST("/api/cron/refresh", refreshHandler.RunSweep)

	fmt.Printf("MasjidFinder-App server starting on :%s...\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}
