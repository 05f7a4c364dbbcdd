package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/clearance-agent/internal/assistant"
	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Bounds of the expiry_window query parameter.
const (
	MinExpiryWindowDays = 1
	MaxExpiryWindowDays = 30
)

type ClearanceHandler struct {
	service *service.ClearanceService
}

func NewClearanceHandler(service *service.ClearanceService) *ClearanceHandler {
	return &ClearanceHandler{service: service}
}

type askRequest struct {
	Question     string `json:"question" binding:"required"`
	ExpiryWindow int    `json:"expiry_window"`
	Category     string `json:"category"`
}

func (h *ClearanceHandler) parseFilter(c *gin.Context) (domain.ClearanceFilter, error) {
	filter := domain.ClearanceFilter{
		ExpiryWindowDays: domain.DefaultExpiryWindowDays,
		Category:         domain.AllCategories,
	}

	if raw := strings.TrimSpace(c.Query("expiry_window")); raw != "" {
		window, err := strconv.Atoi(raw)
		if err != nil {
			return filter, fmt.Errorf("expiry_window must be an integer")
		}
		filter.ExpiryWindowDays = window
	}
	if err := validateWindow(filter.ExpiryWindowDays); err != nil {
		return filter, err
	}

	if category := c.Query("category"); strings.TrimSpace(category) != "" {
		filter.Category = category
	}

	return filter, nil
}

func validateWindow(days int) error {
	if days < MinExpiryWindowDays || days > MaxExpiryWindowDays {
		return fmt.Errorf("expiry_window must be between %d and %d", MinExpiryWindowDays, MaxExpiryWindowDays)
	}
	return nil
}

// GetCategories returns the category filter choices.
func (h *ClearanceHandler) GetCategories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// GetRecords returns every enriched ledger record.
func (h *ClearanceHandler) GetRecords(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context())
	if err != nil {
		h.fail(c, "Failed to load records", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records)})
}

// GetRecommendations returns the selected records in urgency order, as JSON or CSV.
func (h *ClearanceHandler) GetRecommendations(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return
	}

	records, err := h.service.Recommendations(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to compute recommendations", err)
		return
	}

	if strings.EqualFold(c.Query("format"), "csv") {
		table, err := clearance.RecommendationTable(records)
		if err != nil {
			h.fail(c, "Failed to serialize recommendations", err)
			return
		}
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(table))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records, "total": len(records), "filter": filter})
}

// GetSuggestions returns the reasoned suggestion list.
func (h *ClearanceHandler) GetSuggestions(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return
	}

	suggestions, err := h.service.Suggestions(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to compute suggestions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suggestions, "total": len(suggestions)})
}

// Ask answers a question about the current recommendations.
func (h *ClearanceHandler) Ask(c *gin.Context) {
	if !h.service.AssistantEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": service.ErrAssistantUnavailable.Error()})
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	filter := domain.ClearanceFilter{ExpiryWindowDays: req.ExpiryWindow, Category: req.Category}
	if filter.ExpiryWindowDays == 0 {
		filter.ExpiryWindowDays = domain.DefaultExpiryWindowDays
	}
	if filter.Category == "" {
		filter.Category = domain.AllCategories
	}
	if err := validateWindow(filter.ExpiryWindowDays); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), req.Question, filter)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuestion) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question", "details": err.Error()})
			return
		}
		h.fail(c, "Failed to answer question", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// GetReport streams the PDF suggestion report.
func (h *ClearanceHandler) GetReport(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filter", "details": err.Error()})
		return
	}

	pdf, err := h.service.Report(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "Failed to render report", err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="clearance_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// fail maps ledger errors to 422 and everything else to 500.
func (h *ClearanceHandler) fail(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrSchema) || errors.Is(err, domain.ErrDataFormat) {
		status = http.StatusUnprocessableEntity
	}
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}
