package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/assistant"
	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/report"
	"github.com/andresuchdata/clearance-agent/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrAssistantUnavailable is returned by Ask when no language model is configured.
var ErrAssistantUnavailable = errors.New("question answering is not configured")

// ClearanceService answers dashboard queries by re-running the analysis on the
// current ledger snapshot for every call.
type ClearanceService struct {
	repo      repository.LedgerRepository
	assistant *assistant.Service
	workers   int
	now       func() time.Time
}

// NewClearanceService creates a service. assistantSvc may be nil.
func NewClearanceService(repo repository.LedgerRepository, assistantSvc *assistant.Service, workers int) *ClearanceService {
	return &ClearanceService{
		repo:      repo,
		assistant: assistantSvc,
		workers:   workers,
		now:       clearance.Today,
	}
}

// WithClock overrides the evaluation date source.
func (s *ClearanceService) WithClock(now func() time.Time) *ClearanceService {
	s.now = now
	return s
}

// AssistantEnabled reports whether Ask can reach a language model.
func (s *ClearanceService) AssistantEnabled() bool {
	return s.assistant != nil
}

func (s *ClearanceService) analyze(ctx context.Context, filter domain.ClearanceFilter) (*clearance.Result, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return clearance.Analyze(ctx, records, s.now(), clearance.Options{
		ExpiryWindowDays: filter.ExpiryWindowDays,
		Category:         filter.Category,
		Workers:          s.workers,
	})
}

// Records returns every ledger record enriched with the default window.
func (s *ClearanceService) Records(ctx context.Context) ([]domain.EnrichedRecord, error) {
	result, err := s.analyze(ctx, domain.ClearanceFilter{ExpiryWindowDays: domain.DefaultExpiryWindowDays})
	if err != nil {
		return nil, err
	}
	return result.Enriched, nil
}

// Categories returns "All" followed by the ledger's distinct categories.
func (s *ClearanceService) Categories(ctx context.Context) ([]string, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return clearance.Categories(records), nil
}

// Recommendations returns the selected records in urgency order.
func (s *ClearanceService) Recommendations(ctx context.Context, filter domain.ClearanceFilter) ([]domain.EnrichedRecord, error) {
	result, err := s.analyze(ctx, filter)
	if err != nil {
		return nil, err
	}
	return result.Selected, nil
}

// Suggestions returns the reasoned suggestion list for filter.
func (s *ClearanceService) Suggestions(ctx context.Context, filter domain.ClearanceFilter) ([]domain.ClearanceSuggestion, error) {
	result, err := s.analyze(ctx, filter)
	if err != nil {
		return nil, err
	}
	return result.Suggestions, nil
}

// Ask answers question from the recommendation table for filter.
func (s *ClearanceService) Ask(ctx context.Context, question string, filter domain.ClearanceFilter) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantUnavailable
	}

	selected, err := s.Recommendations(ctx, filter)
	if err != nil {
		return "", err
	}
	table, err := clearance.RecommendationTable(selected)
	if err != nil {
		return "", err
	}

	answer, err := s.assistant.Ask(ctx, question, table)
	if err != nil {
		log.Warn().Err(err).Msg("clearance: assistant request failed")
		return "", err
	}
	return answer, nil
}

// Report renders the suggestion list for filter as a PDF.
func (s *ClearanceService) Report(ctx context.Context, filter domain.ClearanceFilter) ([]byte, error) {
	result, err := s.analyze(ctx, filter)
	if err != nil {
		return nil, err
	}

	doc := clearance.ReportDocument(s.repo.Source(), result, filter.ExpiryWindowDays, filter.Category)
	pdf, err := report.Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("render clearance report: %w", err)
	}
	return pdf, nil
}
