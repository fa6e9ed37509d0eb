package model

import "time"

// APICallKind テレメトリに記録する呼び出し種別の定数
const (
	CallKindNearbySearch = "nearby_search"
	CallKindPlaceDetails = "place_details"
	CallKindRefreshSweep = "refresh_sweep"
)

// APICallLog 上流API呼び出し（またはキャッシュヒット）1件ごとのテレメトリ記録。
// 追記専用で、このサブシステムからは更新・削除しない
type APICallLog struct {
	ID            string    `json:"id" firestore:"id"`
	CallKind      string    `json:"call_kind" firestore:"call_kind"`
	EstimatedCost float64   `json:"estimated_cost" firestore:"estimated_cost"` // USD
	CacheHit      bool      `json:"cache_hit" firestore:"cache_hit"`
	LatencyMs     int64     `json:"latency_ms" firestore:"latency_ms"`
	Success       bool      `json:"success" firestore:"success"`
	ErrorDetail   string    `json:"error_detail,omitempty" firestore:"error_detail,omitempty"`
	ResultCount   int       `json:"result_count" firestore:"result_count"`
	CreatedAt     time.Time `json:"created_at" firestore:"created_at"`
}

// RefreshStats 差分リフレッシュ1回分の実行結果サマリー
type RefreshStats struct {
	Total         int           `json:"total"`          // 対象となった古いエントリ数
	Updated       int           `json:"updated"`        // フィールド差分ありで全体更新した件数
	Unchanged     int           `json:"unchanged"`      // タイムスタンプのみ更新した件数
	Errors        int           `json:"errors"`         // 失敗してスキップした件数
	EstimatedCost float64       `json:"estimated_cost"` // 上流呼び出しの推定コスト合計（USD）
	Duration      time.Duration `json:"duration"`       // スイープ全体の所要時間
}
