package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"MasjidFinder-App/internal/usecase"
)

// RefreshHandler 差分リフレッシュのcronトリガー用HTTPハンドラー
type RefreshHandler struct {
	refreshUseCase usecase.RefreshUseCase
}

// NewRefreshHandler RefreshHandlerの新しいインスタンスを作成
func NewRefreshHandler(refreshUseCase usecase.RefreshUseCase) *RefreshHandler {
	return &RefreshHandler{
		refreshUseCase: refreshUseCase,
	}
}

// RunSweep POST /api/cron/refresh - 差分リフレッシュを実行して結果サマリーを返す。
// アイテムごとの失敗はサマリーのerrorsに含まれ、HTTPエラーにはしない
func (h *RefreshHandler) RunSweep(c *gin.Context) {
	staleThreshold := time.Duration(0)
	if days := c.Query("stale_days"); days != "" {
		parsed, err := strconv.Atoi(days)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "stale_days must be a positive integer",
			})
			return
		}
		staleThreshold = time.Duration(parsed) * 24 * time.Hour
	}

	stats := h.refreshUseCase.RunSweep(c.Request.Context(), staleThreshold)

	c.JSON(http.StatusOK, gin.H{
		"total":          stats.Total,
		"updated":        stats.Updated,
		"unchanged":      stats.Unchanged,
		"errors":         stats.Errors,
		"estimated_cost": stats.EstimatedCost,
		"duration_ms":    stats.Duration.Milliseconds(),
	})
}
