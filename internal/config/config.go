package config

import (
	"fmt"
	"os"
	"strings"
)

// Config 環境変数から読み込むアプリケーション設定。
// 起動時に一度だけ読み込み、各コンストラクタへ明示的に渡す
type Config struct {
	GoogleMapsAPIKey   string // Places API (New) のAPIキー
	SupabaseURL        string // SupabaseプロジェクトURL
	SupabaseAnonKey    string // Supabase匿名キー（PostgRESTリポジトリ使用時）
	SupabaseDBPassword string // PostgreSQL直接接続用パスワード
	FirestoreProjectID string // テレメトリログ用のGCPプロジェクトID
	Port               string // HTTPサーバーのポート
	CacheBackend       string // キャッシュストアの実装（"postgres" または "supabase"）
	IncludedTypes      []string
}

const (
	CacheBackendPostgres = "postgres"
	CacheBackendSupabase = "supabase"
)

// Load 環境変数から設定を読み込む。必須項目が欠落している場合はエラーを返す
func Load() (*Config, error) {
	cfg := &Config{
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseDBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		Port:               os.Getenv("PORT"),
		CacheBackend:       os.Getenv("CACHE_BACKEND"),
	}

	if cfg.GoogleMapsAPIKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY環境変数が設定されていません")
	}
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL環境変数が設定されていません")
	}

	if cfg.CacheBackend == "" {
		cfg.CacheBackend = CacheBackendPostgres
	}
	switch cfg.CacheBackend {
	case CacheBackendPostgres:
		if cfg.SupabaseDBPassword == "" {
			return nil, fmt.Errorf("SUPABASE_DB_PASSWORD環境変数が設定されていません")
		}
	case CacheBackendSupabase:
		if cfg.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY環境変数が設定されていません")
		}
	default:
		return nil, fmt.Errorf("CACHE_BACKENDが不正です（postgres または supabase）: %s", cfg.CacheBackend)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.FirestoreProjectID == "" {
		cfg.FirestoreProjectID = "masjid-finder-app"
	}

	// 検索対象タイプ（カンマ区切りで上書き可能）
	if types := os.Getenv("PLACE_INCLUDED_TYPES"); types != "" {
		for _, t := range strings.Split(types, ",") {
			if trimmed := strings.TrimSpace(t); trimmed != "" {
				cfg.IncludedTypes = append(cfg.IncludedTypes, trimmed)
			}
		}
	}

	return cfg, nil
}
