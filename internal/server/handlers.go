package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"giga/internal/ads"
	"giga/internal/core"
	"giga/internal/growth"
	"giga/internal/llm"
	"giga/internal/logger"
	"giga/internal/pipeline"
	"giga/internal/reporting"
)

// maxBodyBytes bounds request bodies; idea lists with two years of history
// are the largest payloads.
const maxBodyBytes = 32 << 20

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the envelope of every failed API call
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed API call
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ideasRequest struct {
	Seeds    []string `json:"seeds"`
	Country  string   `json:"country"`
	Language string   `json:"language"`
	MaxIdeas int      `json:"max_ideas"`
}

type insightsRequest struct {
	Seeds    []string           `json:"seeds"`
	Ideas    []core.KeywordIdea `json:"ideas"`
	Metric   string             `json:"metric"`
	Language string             `json:"language"`
}

type clustersRequest struct {
	Ideas    []core.KeywordIdea `json:"ideas"`
	Keywords []string           `json:"keywords"`
	Template string             `json:"template"`
}

type campaignsRequest struct {
	Insights   string `json:"insights"`
	Language   string `json:"language"`
	BrandName  string `json:"brand_name"`
	AdExamples string `json:"ad_examples"`
	StyleGuide string `json:"style_guide"`
}

type campaignsResponse struct {
	HTML string `json:"html"`
}

type trendsRequest struct {
	Seeds    []string `json:"seeds"`
	Template string   `json:"template"`
}

type keywordsResponse struct {
	Keywords []string `json:"keywords"`
}

type newTermsRequest struct {
	CustomerID   string `json:"customer_id"`
	RecentDays   int    `json:"recent_days"`
	BaselineDays *int   `json:"baseline_days"`
	Language     string `json:"language"`
}

type suggestAdsRequest struct {
	CustomerID   string   `json:"customer_id"`
	Keywords     []string `json:"keywords"`
	TopN         int      `json:"top_n"`
	LookbackDays int      `json:"lookback_days"`
	Metric       string   `json:"metric"`
}

type suggestAdsResponse struct {
	Ads []core.AdCopy `json:"ads"`
}

// handleHealth handles the /healthz endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleIdeas handles POST /api/ideas
func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	var req ideasRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.Ideas(r.Context(), pipeline.IdeasOptions{
		Seeds:    req.Seeds,
		Country:  req.Country,
		Language: req.Language,
		MaxIdeas: req.MaxIdeas,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// handleInsights handles POST /api/insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if !s.decode(w, r, &req) {
		return
	}
	var metric growth.Metric
	if req.Metric != "" {
		m, err := growth.ParseMetric(req.Metric)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		metric = m
	}
	res, err := s.service.Insights(r.Context(), pipeline.InsightsOptions{
		Seeds:    req.Seeds,
		Ideas:    req.Ideas,
		Metric:   metric,
		Language: req.Language,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// handleClusters handles POST /api/clusters
func (s *Server) handleClusters(w http.ResponseWriter, r *http.Request) {
	var req clustersRequest
	if !s.decode(w, r, &req) {
		return
	}
	ideas := append(req.Ideas, pipeline.KeywordIdeas(req.Keywords)...)
	res, err := s.service.Clusters(r.Context(), ideas, req.Template)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// handleCampaigns handles POST /api/campaigns
func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	var req campaignsRequest
	if !s.decode(w, r, &req) {
		return
	}
	html, err := s.service.Campaigns(r.Context(), pipeline.CampaignOptions{
		Insights:   req.Insights,
		Language:   req.Language,
		BrandName:  req.BrandName,
		AdExamples: req.AdExamples,
		StyleGuide: req.StyleGuide,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, campaignsResponse{HTML: html})
}

// handleTrends handles POST /api/trends
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	var req trendsRequest
	if !s.decode(w, r, &req) {
		return
	}
	keywords, err := s.service.Trends(r.Context(), req.Seeds, req.Template)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, keywordsResponse{Keywords: keywords})
}

// handleNewSearchTerms handles POST /api/search-terms/new
func (s *Server) handleNewSearchTerms(w http.ResponseWriter, r *http.Request) {
	var req newTermsRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.service.NewSearchTermKeywords(r.Context(), pipeline.NewTermsOptions{
		CustomerID:   req.CustomerID,
		RecentDays:   req.RecentDays,
		BaselineDays: req.BaselineDays,
		Language:     req.Language,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// handleSuggestAds handles POST /api/ads/suggest
func (s *Server) handleSuggestAds(w http.ResponseWriter, r *http.Request) {
	var req suggestAdsRequest
	if !s.decode(w, r, &req) {
		return
	}
	suggestions, err := s.service.SuggestAds(r.Context(), pipeline.SuggestAdsOptions{
		CustomerID:   req.CustomerID,
		Keywords:     req.Keywords,
		TopN:         req.TopN,
		LookbackDays: req.LookbackDays,
		Metric:       req.Metric,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, suggestAdsResponse{Ads: suggestions})
}

// decode reads a JSON body into v, answering 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:      "invalid_request",
			Message:   fmt.Sprintf("invalid request body: %v", err),
			RequestID: RequestIDFrom(r.Context()),
		}})
		return false
	}
	return true
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", err)
	}
}

// respondError maps a pipeline error onto a status code and error envelope
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("API request failed", err, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()))
	}
	s.respondJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   err.Error(),
		RequestID: RequestIDFrom(r.Context()),
	}})
}

func classify(err error) (int, string) {
	var apiErr *ads.APIError
	var parseErr *llm.ParseError
	var validationErr *llm.ValidationError

	switch {
	case errors.Is(err, pipeline.ErrNoSeedKeywords),
		errors.Is(err, pipeline.ErrMissingCustomerID),
		errors.Is(err, ads.ErrMissingCustomerID),
		errors.Is(err, growth.ErrUnknownMetric),
		errors.Is(err, reporting.ErrInvalidMetric):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, ads.ErrCriterionNotFound):
		return http.StatusUnprocessableEntity, "criterion_not_found"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "ads_api_error"
	case errors.As(err, &parseErr), errors.As(err, &validationErr), errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway, "model_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
