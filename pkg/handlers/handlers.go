package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/auth"
	"github.com/arnavshah/duty-rotation-go/pkg/calendar"
	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/arnavshah/duty-rotation-go/pkg/database"
	"github.com/arnavshah/duty-rotation-go/pkg/export"
	"github.com/arnavshah/duty-rotation-go/pkg/metrics"
	"github.com/arnavshah/duty-rotation-go/pkg/models"
	"github.com/arnavshah/duty-rotation-go/pkg/roster"
	"github.com/arnavshah/duty-rotation-go/pkg/rotation"
	"github.com/arnavshah/duty-rotation-go/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB      *gorm.DB
	Config  config.Config
	Secrets auth.Secrets
	Metrics *metrics.Registry
	// Now is the reference clock for the horizon; nil means time.Now
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.Secrets.VerifyToken(auth.BearerToken(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the API key for scheduler routes using HMAC
// and enforces the key's daily request limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}
		key = auth.BearerToken(key)

		userID, err := h.Secrets.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Fetch or create API key record to track usage
		var apiKey database.APIKey
		if err := h.DB.Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
			Key:        key,
			Name:       userID,
			KeyPreview: preview(key),
			RateLimit:  10000,
		}).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API key"})
			return
		}

		used, err := database.RequestsOn(h.DB, apiKey.ID, database.Today(h.now()))
		if err != nil {
			log.Printf("usage lookup for key %d failed: %v", apiKey.ID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not check request limit"})
			return
		}
		if apiKey.RateLimit > 0 && used >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily request limit reached"})
			return
		}

		now := h.now()
		h.DB.Model(&apiKey).Update("last_used", &now)

		c.Set("apiKey", &apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// statusFor maps generation errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, calendar.ErrInvalidHorizon),
		errors.Is(err, roster.ErrMalformedEntry):
		return http.StatusBadRequest
	case errors.Is(err, scheduler.ErrEmptyRoster),
		errors.Is(err, scheduler.ErrNotEnoughDistinctMembers):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// requestConfig overlays the request parameters on the server configuration
func (h *Handler) requestConfig(input models.ScheduleInput) config.Config {
	cfg := h.Config
	if input.Months != 0 {
		cfg.Months = input.Months
	}
	if input.Strategy != 0 {
		cfg.Strategy = input.Strategy
	}
	if input.ShiftSize != 0 {
		cfg.ShiftSize = input.ShiftSize
	}
	if input.ContextSize != nil {
		cfg.ContextSize = *input.ContextSize
	}
	if input.Seed != 0 {
		cfg.Seed = input.Seed
	}
	cfg.IncludeCurrentMonth = input.IncludeCurrentMonth
	return cfg
}

func (h *Handler) referenceDate(input models.ScheduleInput) (time.Time, error) {
	if input.ReferenceDate == "" {
		return h.now(), nil
	}
	return time.Parse("2006-01-02", input.ReferenceDate)
}

// generate runs one schedule generation for input and records usage
func (h *Handler) generate(c *gin.Context, input models.ScheduleInput) (*rotation.Result, config.Config, bool) {
	cfg := h.requestConfig(input)

	ref, err := h.referenceDate(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference_date must be YYYY-MM-DD"})
		return nil, cfg, false
	}

	entries := roster.Parse(input.Roster, cfg.Delimiter)
	res, err := rotation.Generate(cfg, entries, input.Context, ref, h.Metrics)
	if err != nil {
		h.RecordUsage(c, 0, 0, true)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, cfg, false
	}

	h.RecordUsage(c, len(res.Schedule), len(res.Members), false)
	return res, cfg, true
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, cfg, ok := h.generate(c, input)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res.Response(cfg))
}

// RecordUsage records API usage in the database using an efficient upsert
func (h *Handler) RecordUsage(c *gin.Context, shiftCount, memberCount int, failed bool) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	failedRuns := 0
	if failed {
		failedRuns = 1
	}

	// Use OnConflict for a single-query upsert (supported by both Postgres and SQLite)
	h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_shifts":  gorm.Expr("total_shifts + ?", shiftCount),
			"total_members": gorm.Expr("total_members + ?", memberCount),
			"failed_runs":   gorm.Expr("failed_runs + ?", failedRuns),
		}),
	}).Create(&database.APIUsage{
		KeyID:        apiKey.ID,
		Date:         database.Today(h.now()),
		RequestCount: 1,
		TotalShifts:  shiftCount,
		TotalMembers: memberCount,
		FailedRuns:   failedRuns,
	})
}

func readLines(fh *multipart.FileHeader) ([]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return roster.ReadLines(f)
}

// ScheduleCSV handles roster file uploads and answers with the schedule as CSV.
// With ?download=1 the CSV is sent as an attachment instead of inside JSON.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	rosterFile, _ := c.FormFile("roster_file")
	contextFile, _ := c.FormFile("context_file")

	if rosterFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster_file is required"})
		return
	}

	lines, err := readLines(rosterFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read roster file"})
		return
	}

	input := models.ScheduleInput{
		Roster:        lines,
		ReferenceDate: c.PostForm("reference_date"),
	}

	if contextFile != nil {
		ctxLines, err := readLines(contextFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read context file"})
			return
		}
		input.Context = roster.Names(ctxLines)
	}

	if err := bindForm(c, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, cfg, ok := h.generate(c, input)
	if !ok {
		return
	}

	var outCSV strings.Builder
	if err := export.WriteCSV(&outCSV, res.Schedule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV"})
		return
	}

	fileName := res.Response(cfg).FileName
	if c.Query("download") != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(outCSV.String()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"csv": outCSV.String(), "file_name": fileName})
}

// bindForm reads the optional numeric and flag form fields of a CSV upload
func bindForm(c *gin.Context, input *models.ScheduleInput) error {
	if v := c.PostForm("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("months must be a number")
		}
		input.Months = n
	}
	if v := c.PostForm("strategy"); v != "" {
		s, err := models.ParseStrategy(v)
		if err != nil {
			return err
		}
		input.Strategy = s
	}
	if v := c.PostForm("include_current_month"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("include_current_month must be true or false")
		}
		input.IncludeCurrentMonth = b
	}
	if v := c.PostForm("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("seed must be a number")
		}
		input.Seed = n
	}
	return nil
}

// preview shortens a key for listing, e.g. "gem...9f3a"
func preview(key string) string {
	if len(key) > 8 {
		return key[:3] + "..." + key[len(key)-4:]
	}
	return "****"
}
