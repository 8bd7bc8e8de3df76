package handler

import (
	"net/http"

	"recipebox/internal/dto"
	"recipebox/internal/service"

	"github.com/gin-gonic/gin"
)

type FoodsHandler struct{ svc service.FoodService }

func NewFoodsHandler(svc service.FoodService) *FoodsHandler {
	return &FoodsHandler{svc: svc}
}

// Create POST /v1/foods
func (h *FoodsHandler) Create(c *gin.Context) {
	var req dto.CreateFoodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/foods
func (h *FoodsHandler) List(c *gin.Context) {
	var filter dto.FoodFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/foods/:id
func (h *FoodsHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update PUT /v1/foods/:id
// A serving size change schedules a nutrition refresh of every recipe using
// the food.
func (h *FoodsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateFoodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/foods/:id
func (h *FoodsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpsertProfile godoc
// @Summary Create or replace the food's per-100g nutrient profile
// @Tags foods
// @Accept json
// @Produce json
// @Param id path string true "Food ID"
// @Param body body dto.NutrientProfileRequest true "Profile"
// @Success 200 {object} dto.FoodResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/foods/{id}/profile [put]
func (h *FoodsHandler) UpsertProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.NutrientProfileRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpsertProfile(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
