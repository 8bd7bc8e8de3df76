package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"recipebox/internal/dto"
	"recipebox/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const barcodeCacheTTL = 5 * time.Minute

// FoodLookupHandler serves the public barcode lookup used by scanners.
// No authentication required; responses are cached in Redis.
type FoodLookupHandler struct {
	svc service.FoodService
	rdb *redis.Client
}

// NewFoodLookupHandler builds the handler. rdb may be nil, which disables
// the cache.
func NewFoodLookupHandler(svc service.FoodService, rdb *redis.Client) *FoodLookupHandler {
	return &FoodLookupHandler{svc: svc, rdb: rdb}
}

// GetByBarcode godoc
// @Summary Look up a food and its nutrient profile by barcode
// @Tags foods
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.FoodResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/foods/barcode/{barcode} [get]
func (h *FoodLookupHandler) GetByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "food:barcode:" + barcode

	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.FoodResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.Header("X-Cache", "HIT")
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	resp, err := h.svc.GetByBarcode(ctx, barcode)
	if err != nil {
		respondError(c, err)
		return
	}

	// best effort; a failed write only costs the next lookup a DB query
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, barcodeCacheTTL).Err()
		}
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, resp)
}
