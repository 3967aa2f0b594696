package api

import (
	"finance_tracker/internal/middleware" // Access guard, request logging, CORS
	"finance_tracker/internal/utils"      // Cache

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps are the shared resources handed to every handler
type Deps struct {
	DB        *gorm.DB     // Store connection pool
	Cache     *utils.Cache // Per-user response cache, may be disabled
	JWTSecret string       // Token signing secret
	Origins   []string     // Allowed CORS origins, empty for any
}

// NewRouter builds the HTTP surface
func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(d.Origins),
	)

	r.GET("/", HealthHandler())             // Liveness
	r.GET("/db-test", DBCheckHandler(d.DB)) // Store reachability

	// Auth routes
	auth := r.Group("/api/auth")
	auth.POST("/register", RegisterHandler(d.DB))        // Registration endpoint
	auth.POST("/login", LoginHandler(d.DB, d.JWTSecret)) // Login endpoint

	// Everything else requires a valid token
	protected := r.Group("/api", middleware.JWTAuthMiddleware(d.JWTSecret))

	categories := protected.Group("/categories")
	categories.POST("", CreateCategoryHandler(d.DB, d.Cache))
	categories.GET("", ListCategoriesHandler(d.DB, d.Cache))
	categories.PUT("/:id", UpdateCategoryHandler(d.DB, d.Cache))
	categories.DELETE("/:id", DeleteCategoryHandler(d.DB, d.Cache))

	expenses := protected.Group("/expenses")
	expenses.POST("", CreateExpenseHandler(d.DB, d.Cache))
	expenses.GET("", ListExpensesHandler(d.DB))
	expenses.GET("/:id", GetExpenseHandler(d.DB))
	expenses.PUT("/:id", UpdateExpenseHandler(d.DB, d.Cache))
	expenses.DELETE("/:id", DeleteExpenseHandler(d.DB, d.Cache))

	reports := protected.Group("/reports")
	reports.GET("/monthly", MonthlyReportHandler(d.DB, d.Cache)) // Twelve months of one year
	reports.GET("/month", MonthReportHandler(d.DB, d.Cache))     // One month in detail

	return r
}
