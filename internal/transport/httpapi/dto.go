package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	openapi_types "github.com/oapi-codegen/runtime/types"

	domrec "github.com/keepson/keepson/internal/domain/record"
	"github.com/keepson/keepson/internal/domain/search/hints"
	"github.com/keepson/keepson/internal/domain/search/result"
)

var validate = validator.New()

type createRecordRequest struct {
	Type    string   `json:"type" validate:"required"`
	Title   string   `json:"title" validate:"omitempty,max=200"`
	Content string   `json:"content"`
	Tags    []string `json:"tags" validate:"omitempty,max=32,dive,min=1,max=64"`
}

type updateRecordRequest struct {
	Title   *string   `json:"title" validate:"omitempty,max=200"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags" validate:"omitempty,max=32,dive,min=1,max=64"`
}

type advancedSearchRequest struct {
	Keywords  []string            `json:"keywords" validate:"omitempty,max=32,dive,min=1"`
	Types     []string            `json:"types" validate:"omitempty,dive,oneof=note image audio video link"`
	DateFrom  *openapi_types.Date `json:"date_from"`
	DateTo    *openapi_types.Date `json:"date_to"`
	Tags      []string            `json:"tags" validate:"omitempty,max=32,dive,min=1,max=64"`
	Page      int                 `json:"page" validate:"omitempty,min=1"`
	Limit     int                 `json:"limit" validate:"omitempty,min=1,max=100"`
	SortBy    string              `json:"sort_by" validate:"omitempty,oneof=createdAt updatedAt title"`
	SortOrder string              `json:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type recordResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	HasFile   bool      `json:"has_file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pageResponse struct {
	Page         int  `json:"page"`
	TotalPages   int  `json:"total_pages"`
	TotalRecords int  `json:"total_records"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
}

type recordListResponse struct {
	Items      []recordResponse `json:"items"`
	Pagination pageResponse     `json:"pagination"`
}

type searchHintsResponse struct {
	Keywords []string `json:"keywords,omitempty"`
	Types    []string `json:"types,omitempty"`
	DateFrom string   `json:"date_from,omitempty"`
	DateTo   string   `json:"date_to,omitempty"`
}

type searchResponse struct {
	Query    string               `json:"query"`
	Strategy string               `json:"strategy"`
	Patterns []string             `json:"patterns,omitempty"`
	Hints    *searchHintsResponse `json:"hints,omitempty"`
	Items    []recordResponse     `json:"items"`
	Total    int                  `json:"total"`
}

type advancedSearchResponse struct {
	Items      []recordResponse `json:"items"`
	Pagination pageResponse     `json:"pagination"`
}

type usageMetricsResponse struct {
	OracleRequests int `json:"oracle_requests"`
	Tokens         int `json:"tokens"`
}

type usageBudgetResponse struct {
	TokensLimit     int        `json:"tokens_limit"`
	TokensRemaining int        `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type usageResponse struct {
	Period        string               `json:"period"`
	PeriodStartAt *time.Time           `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time           `json:"period_end_at,omitempty"`
	Usage         usageMetricsResponse `json:"usage"`
	Budget        usageBudgetResponse  `json:"budget"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func recordToDTO(rec *domrec.Record) recordResponse {
	return recordResponse{
		ID:        rec.ID(),
		Type:      string(rec.RecordType()),
		Title:     rec.Title(),
		Content:   rec.Content(),
		Summary:   rec.Summary(),
		Tags:      rec.Tags(),
		HasFile:   rec.FileRef() != "",
		CreatedAt: rec.CreatedAt().UTC(),
		UpdatedAt: rec.UpdatedAt().UTC(),
	}
}

func recordsToDTO(recs []domrec.Record) []recordResponse {
	items := make([]recordResponse, len(recs))
	for i := range recs {
		items[i] = recordToDTO(&recs[i])
	}
	return items
}

func pageToDTO(p result.Page) pageResponse {
	return pageResponse{
		Page:         p.CurrentPage(),
		TotalPages:   p.TotalPages(),
		TotalRecords: p.TotalRecords(),
		HasNext:      p.HasNext(),
		HasPrevious:  p.HasPrevious(),
	}
}

func hintsToDTO(h *hints.Hints) *searchHintsResponse {
	if h == nil {
		return nil
	}
	var types []string
	for _, t := range h.Types() {
		types = append(types, string(t))
	}
	return &searchHintsResponse{
		Keywords: h.Keywords(),
		Types:    types,
		DateFrom: h.DateFrom(),
		DateTo:   h.DateTo(),
	}
}
