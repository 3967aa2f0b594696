package api

import (
	"net/http" // HTTP status codes
	"strings"  // Trimming

	"finance_tracker/internal/domain" // Domain models
	"finance_tracker/internal/store"  // Record store
	"finance_tracker/internal/utils"  // Cache

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// CategoryRequest is the body of category create and update
type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"` // Unique per user
}

// bindCategory decodes and validates a category body, returning the trimmed name
func bindCategory(c *gin.Context, op string) (string, bool) {
	var req CategoryRequest
	issues, decoded := bindJSON(c, &req)
	if decoded && len(issues) == 0 && strings.TrimSpace(req.Name) == "" {
		issues.Add("name", "is required")
	}
	if len(issues) > 0 {
		respondError(c, issues.Err(), op)
		return "", false
	}
	return strings.TrimSpace(req.Name), true
}

// CreateCategoryHandler creates a category for the authenticated user
func CreateCategoryHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		name, ok := bindCategory(c, "create category")
		if !ok {
			return
		}
		category, err := store.CreateCategory(c.Request.Context(), db, userID, name)
		if err != nil {
			respondError(c, err, "create category")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,        // Owner
			"category_id": category.ID,   // New category
			"name":        category.Name, // Category name
		}).Info("Category created")
		c.JSON(http.StatusCreated, category)
	}
}

// ListCategoriesHandler returns the user's categories sorted by name
func ListCategoriesHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		cacheKey := cache.Key(ctx, userID, "categories")
		var categories []domain.Category
		if cache.Get(ctx, cacheKey, &categories) {
			c.JSON(http.StatusOK, categories)
			return
		}
		categories, err := store.ListCategories(ctx, db, userID)
		if err != nil {
			respondError(c, err, "list categories")
			return
		}
		cache.Set(ctx, cacheKey, categories)
		c.JSON(http.StatusOK, categories)
	}
}

// UpdateCategoryHandler renames one of the user's categories
func UpdateCategoryHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		name, ok := bindCategory(c, "update category")
		if !ok {
			return
		}
		category, err := store.RenameCategory(c.Request.Context(), db, userID, id, name)
		if err != nil {
			respondError(c, err, "update category")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": id}).Info("Category updated")
		c.JSON(http.StatusOK, category)
	}
}

// DeleteCategoryHandler deletes one of the user's categories unless an
// expense still links to it
func DeleteCategoryHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := store.DeleteCategory(c.Request.Context(), db, userID, id); err != nil {
			respondError(c, err, "delete category")
			return
		}
		cache.InvalidateUser(c.Request.Context(), userID)
		logrus.WithFields(logrus.Fields{"user_id": userID, "category_id": id}).Info("Category deleted")
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
