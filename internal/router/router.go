package router

import (
	"time"

	"recipebox/internal/config"
	"recipebox/internal/handler"
	"recipebox/internal/infra"
	"recipebox/internal/middleware"
	"recipebox/internal/repository"
	"recipebox/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root.
// ImageStore and Queue may be nil: uploads are then rejected and nutrition
// refreshes run inline. A nil Limiter gets a default one whose entries are
// never purged, which is only suitable for tests.
type Deps struct {
	DB         *gorm.DB
	Redis      *redis.Client
	ImageStore *infra.S3ImageStore
	Queue      service.RefreshQueue
	Limiter    *middleware.Limiter
}

// Services bundles the domain services so the server and the worker pool
// share one instance of each.
type Services struct {
	Nutrition  service.NutritionService
	Categories service.CategoryService
	Recipes    service.RecipeService
	Foods      service.FoodService
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, deps Deps) *Services {
	foodRepo := repository.NewFoodRepository(deps.DB)
	recipeRepo := repository.NewRecipeRepository(deps.DB)
	ingredientRepo := repository.NewIngredientRepository(deps.DB)
	instructionRepo := repository.NewInstructionRepository(deps.DB)
	imageRepo := repository.NewImageRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)

	nutritionSvc := service.NewNutritionService(recipeRepo, ingredientRepo, foodRepo)
	categorySvc := service.NewCategoryService(categoryRepo, recipeRepo, deps.Redis, cfg.CategoryTreeCacheTTL)

	var store service.ImageStore
	if deps.ImageStore != nil {
		store = deps.ImageStore
	}
	recipeSvc := service.NewRecipeService(
		recipeRepo, ingredientRepo, instructionRepo, imageRepo, foodRepo,
		categorySvc, nutritionSvc, store,
	)
	foodSvc := service.NewFoodService(foodRepo, nutritionSvc, deps.Queue)

	return &Services{
		Nutrition:  nutritionSvc,
		Categories: categorySvc,
		Recipes:    recipeSvc,
		Foods:      foodSvc,
	}
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service
func New(cfg *config.Config, deps Deps, svcs *Services) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	recipesH := handler.NewRecipesHandler(svcs.Recipes)
	categoriesH := handler.NewCategoriesHandler(svcs.Categories)
	foodsH := handler.NewFoodsHandler(svcs.Foods)
	lookupH := handler.NewFoodLookupHandler(svcs.Foods, deps.Redis)

	var imageCB *infra.CircuitBreaker
	if deps.ImageStore != nil {
		imageCB = deps.ImageStore.Breaker()
	}

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(deps.DB, deps.Redis, imageCB))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewLimiter(600, time.Minute)
	}
	optionalAuth := middleware.OptionalJWTAuth(cfg.JWTSecret)
	requireAuth := middleware.JWTAuth(cfg.JWTSecret)

	// Reads: anonymous callers see public recipes only
	public := r.Group("/v1", optionalAuth, limiter.Handler())
	{
		public.GET("/recipes", recipesH.List)
		public.GET("/recipes/:id", recipesH.Get)
		public.GET("/recipes/:id/nutrition", recipesH.Nutrition)
		public.GET("/recipes/:id/card.pdf", recipesH.Card)
		public.GET("/recipes/:id/ingredients", recipesH.ListIngredients)
		public.GET("/recipes/:id/instructions", recipesH.ListInstructions)
		public.GET("/recipes/:id/images", recipesH.ListImages)

		public.GET("/categories", categoriesH.List)
		public.GET("/categories/tree", categoriesH.Tree)
		public.GET("/categories/slug/:slug", categoriesH.GetBySlug)
		public.GET("/categories/:id", categoriesH.Get)
		public.GET("/categories/:id/breadcrumb", categoriesH.Breadcrumb)
		public.GET("/categories/:id/children", categoriesH.Children)

		public.GET("/foods", foodsH.List)
		public.GET("/foods/barcode/:barcode", lookupH.GetByBarcode)
		public.GET("/foods/:id", foodsH.Get)
	}

	// Writes: bearer token required
	v1 := r.Group("/v1", requireAuth, limiter.Handler())
	{
		recipes := v1.Group("/recipes")
		{
			recipes.POST("", recipesH.Create)
			recipes.PUT("/:id", recipesH.Update)
			recipes.DELETE("/:id", recipesH.Delete)

			recipes.POST("/:id/ingredients", recipesH.AddIngredient)
			recipes.PUT("/:id/ingredients/:ingredient_id", recipesH.UpdateIngredient)
			recipes.DELETE("/:id/ingredients/:ingredient_id", recipesH.RemoveIngredient)

			recipes.POST("/:id/instructions", recipesH.AddInstruction)
			recipes.PUT("/:id/instructions/:instruction_id", recipesH.UpdateInstruction)
			recipes.DELETE("/:id/instructions/:instruction_id", recipesH.RemoveInstruction)

			recipes.POST("/:id/images", recipesH.AddImage)
			recipes.DELETE("/:id/images/:image_id", recipesH.RemoveImage)
		}

		categories := v1.Group("/categories")
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
		}

		foods := v1.Group("/foods")
		{
			foods.POST("", foodsH.Create)
			foods.PUT("/:id", foodsH.Update)
			foods.DELETE("/:id", foodsH.Delete)
			foods.PUT("/:id/profile", foodsH.UpsertProfile)
		}
	}

	// Swagger UI; only enabled outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
