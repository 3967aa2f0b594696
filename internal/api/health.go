package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/store" // Record store

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging
	"gorm.io/gorm"               // GORM ORM library
)

// HealthHandler reports that the process is serving
func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API is running"})
	}
}

// DBCheckHandler reports whether the store answers queries
func DBCheckHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := store.CountUsers(c.Request.Context(), db)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Database connection failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "Database connected", "userCount": count})
	}
}
