package api

import (
	"net/http" // HTTP status codes
	"time"     // Current year and month

	"finance_tracker/internal/report"   // Report aggregation
	"finance_tracker/internal/utils"    // Cache
	"finance_tracker/internal/validate" // Input validation

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// reportPeriod reads year and, when withMonth is set, month from the query.
// Missing values default to the current UTC year and month.
func reportPeriod(c *gin.Context, withMonth bool) (int, time.Month, error) {
	var issues validate.Issues
	now := time.Now().UTC()
	year, month := now.Year(), now.Month()
	if v, ok := issues.QueryInt("year", c.Query("year"), report.MinYear, report.MaxYear); ok {
		year = v
	}
	if withMonth {
		if v, ok := issues.QueryInt("month", c.Query("month"), 1, 12); ok {
			month = time.Month(v)
		}
	}
	return year, month, issues.Err()
}

// MonthlyReportHandler returns the user's spending per month of one year
func MonthlyReportHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		year, _, err := reportPeriod(c, false)
		if err != nil {
			respondError(c, err, "monthly report")
			return
		}
		ctx := c.Request.Context()
		cacheKey := cache.Key(ctx, userID, "report", "year", year)
		var cached report.YearReport
		if cache.Get(ctx, cacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
		r, err := report.BuildYearly(ctx, db, userID, year)
		if err != nil {
			respondError(c, err, "monthly report")
			return
		}
		cache.Set(ctx, cacheKey, r)
		c.JSON(http.StatusOK, r)
	}
}

// MonthReportHandler returns the user's expenses and total for one month
func MonthReportHandler(db *gorm.DB, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		year, month, err := reportPeriod(c, true)
		if err != nil {
			respondError(c, err, "month report")
			return
		}
		ctx := c.Request.Context()
		cacheKey := cache.Key(ctx, userID, "report", "month", year, int(month))
		var cached report.MonthReport
		if cache.Get(ctx, cacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
		r, err := report.BuildMonthly(ctx, db, userID, year, month)
		if err != nil {
			respondError(c, err, "month report")
			return
		}
		cache.Set(ctx, cacheKey, r)
		c.JSON(http.StatusOK, r)
	}
}
