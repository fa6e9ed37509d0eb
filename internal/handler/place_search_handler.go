package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"MasjidFinder-App/internal/domain/model"
	"MasjidFinder-App/internal/usecase"
)

// PlaceSearchHandler モスク検索に関するHTTPハンドラー
type PlaceSearchHandler struct {
	searchUseCase usecase.PlaceSearchUseCase
}

// NewPlaceSearchHandler PlaceSearchHandlerの新しいインスタンスを作成
func NewPlaceSearchHandler(searchUseCase usecase.PlaceSearchUseCase) *PlaceSearchHandler {
	return &PlaceSearchHandler{
		searchUseCase: searchUseCase,
	}
}

// SearchNearby GET /api/mosques/search - 指定座標周辺のモスクを検索
func (h *PlaceSearchHandler) SearchNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "lat parameter is required and must be a number",
		})
		return
	}

	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "lng parameter is required and must be a number",
		})
		return
	}

	radius, err := strconv.Atoi(c.DefaultQuery("radius", "5000"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "radius must be an integer (meters)",
		})
		return
	}

	req := &model.SearchRequest{
		Latitude:     lat,
		Longitude:    lng,
		RadiusMeters: radius,
	}

	response, err := h.searchUseCase.SearchNearby(c.Request.Context(), req)
	if err != nil {
		// 「検索できなかった」と「見つからなかった」を呼び出し側が区別できるよう、
		// 上流エラーは明示的なステータスで返す
		switch {
		case errors.Is(err, model.ErrInvalidSearchParams):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "Invalid coordinates or radius: " + err.Error(),
			})
		case errors.Is(err, model.ErrUpstreamUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "search_failed",
				"message": "Upstream search failed: " + err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to search places: " + err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, response)
}
