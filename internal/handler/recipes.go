package handler

import (
	"bytes"
	"net/http"

	"recipebox/internal/dto"
	"recipebox/internal/infra"
	"recipebox/internal/middleware"
	"recipebox/internal/service"

	"github.com/gin-gonic/gin"
)

type RecipesHandler struct{ svc service.RecipeService }

func NewRecipesHandler(svc service.RecipeService) *RecipesHandler {
	return &RecipesHandler{svc: svc}
}

// Create godoc
// @Summary Create a recipe with its ingredients and instructions
// @Tags recipes
// @Accept json
// @Produce json
// @Param body body dto.CreateRecipeRequest true "Recipe"
// @Success 201 {object} dto.RecipeDetailResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/recipes [post]
func (h *RecipesHandler) Create(c *gin.Context) {
	var req dto.CreateRecipeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.CallerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Search recipes visible to the caller
// @Tags recipes
// @Produce json
// @Param q query string false "Name or description contains"
// @Param category_id query string false "Category"
// @Param sort query string false "name | created_at | updated_at | calories | servings"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.RecipeListResponse
// @Router /v1/recipes [get]
func (h *RecipesHandler) List(c *gin.Context) {
	var filter dto.RecipeFilter
	if !bindQuery(c, &filter) {
		return
	}
	filter.CallerID = middleware.CallerID(c)
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/recipes/:id
func (h *RecipesHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update PUT /v1/recipes/:id
func (h *RecipesHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateRecipeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), middleware.CallerID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/recipes/:id
func (h *RecipesHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CallerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Nutrition godoc
// @Summary Per-serving snapshot and per-ingredient breakdown
// @Tags recipes
// @Produce json
// @Param id path string true "Recipe ID"
// @Success 200 {object} dto.RecipeNutritionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/recipes/{id}/nutrition [get]
func (h *RecipesHandler) Nutrition(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Nutrition(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Card GET /v1/recipes/:id/card.pdf
func (h *RecipesHandler) Card(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	recipe, err := h.svc.Get(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := infra.RenderRecipeCard(&buf, recipe); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="recipe-`+recipe.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ── Ingredients ──────────────────────────────────────────────────────────────

func (h *RecipesHandler) ListIngredients(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListIngredients(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipesHandler) AddIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddIngredientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddIngredient(c.Request.Context(), middleware.CallerID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipesHandler) UpdateIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := paramID(c, "ingredient_id")
	if !ok {
		return
	}
	var req dto.UpdateIngredientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateIngredient(c.Request.Context(), middleware.CallerID(c), id, ingredientID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipesHandler) RemoveIngredient(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := paramID(c, "ingredient_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveIngredient(c.Request.Context(), middleware.CallerID(c), id, ingredientID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Instructions ─────────────────────────────────────────────────────────────

func (h *RecipesHandler) ListInstructions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListInstructions(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipesHandler) AddInstruction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddInstructionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddInstruction(c.Request.Context(), middleware.CallerID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipesHandler) UpdateInstruction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	instructionID, ok := paramID(c, "instruction_id")
	if !ok {
		return
	}
	var req dto.UpdateInstructionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateInstruction(c.Request.Context(), middleware.CallerID(c), id, instructionID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecipesHandler) RemoveInstruction(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	instructionID, ok := paramID(c, "instruction_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveInstruction(c.Request.Context(), middleware.CallerID(c), id, instructionID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Images ───────────────────────────────────────────────────────────────────

func (h *RecipesHandler) ListImages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListImages(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddImage POST /v1/recipes/:id/images
// Accepts either an external url or an inline data URI that is uploaded to
// object storage.
func (h *RecipesHandler) AddImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AddImageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddImage(c.Request.Context(), middleware.CallerID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RecipesHandler) RemoveImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	imageID, ok := paramID(c, "image_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveImage(c.Request.Context(), middleware.CallerID(c), id, imageID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
