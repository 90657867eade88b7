// Package valuation exposes the valuation engine, the quality analyzers and
// the calculation history over HTTP.
package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"intrinsic_valuation/pkg/core/quality"
	"intrinsic_valuation/pkg/core/report"
	"intrinsic_valuation/pkg/core/store"
	"intrinsic_valuation/pkg/core/utils"
	"intrinsic_valuation/pkg/core/validate"
	"intrinsic_valuation/pkg/core/valuation"
	"intrinsic_valuation/pkg/models"
)

// MaxBodyBytes bounds request payloads.
const MaxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// AnalyzerSource supplies the sensitivity analyzer for the current settings.
type AnalyzerSource interface {
	Analyzer() *valuation.Analyzer
}

// History is the subset of the history store the handlers use.
type History interface {
	Save(ctx context.Context, run store.Run) (store.Run, error)
	Get(ctx context.Context, id string) (store.Run, error)
	List(ctx context.Context, ticker string, limit int) ([]store.Run, error)
}

// Handler contains HTTP handlers for the valuation API
type Handler struct {
	history   History
	analyzers AnalyzerSource
	log       zerolog.Logger
}

// NewHandler creates a new valuation handler
func NewHandler(history History, analyzers AnalyzerSource, log zerolog.Logger) *Handler {
	return &Handler{
		history:   history,
		analyzers: analyzers,
		log:       log.With().Str("handler", "valuation").Logger(),
	}
}

// RegisterRoutes mounts every valuation endpoint on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/valuation", func(r chi.Router) {
		r.Post("/compare", h.HandleCompare)
		r.Post("/{kind}", h.HandleCalculate)
		r.Post("/{kind}/sensitivity", h.HandleSensitivity)
		r.Post("/{kind}/validate", h.HandleValidate)
	})

	r.Route("/api/analysis", func(r chi.Router) {
		r.Post("/roic", h.HandleROIC)
		r.Post("/moat", h.HandleMoat)
		r.Post("/implied", h.HandleImplied)
		r.Post("/inputs", h.HandleDeriveInputs)
	})

	r.Route("/api/history", func(r chi.Router) {
		r.Get("/", h.HandleListHistory)
		r.Get("/{id}", h.HandleGetRun)
		r.Get("/{id}/report", h.HandleReport)
	})
}

// =============================================================================
// VALUATION
// =============================================================================

// calculateResponse pairs the stored run id with the computed document.
type calculateResponse struct {
	RunID string `json:"run_id,omitempty"`
	report.Document
}

// HandleCalculate runs one model and records it in the history
// POST /api/valuation/{kind}?ticker=KO&sensitivity=true
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := valuation.Run(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	doc := report.Document{Response: resp}

	if withSensitivity, _ := strconv.ParseBool(r.URL.Query().Get("sensitivity")); withSensitivity {
		sens, err := h.analyzers.Analyzer().RunSensitivity(req)
		if err != nil {
			h.writeError(w, err)
			return
		}
		doc.Sensitivity = &sens
	}

	out := calculateResponse{Document: doc}
	if run, err := h.record(r.Context(), r.URL.Query().Get("ticker"), req, doc); err != nil {
		// History is best effort; the valuation itself succeeded.
		h.log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("Failed to record run")
	} else {
		out.RunID = run.ID
	}

	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) record(ctx context.Context, ticker string, req valuation.Request, doc report.Document) (store.Run, error) {
	inputs, err := json.Marshal(req)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to marshal inputs: %w", err)
	}
	result, err := json.Marshal(doc)
	if err != nil {
		return store.Run{}, fmt.Errorf("failed to marshal result: %w", err)
	}
	return h.history.Save(ctx, store.Run{
		Ticker: ticker,
		Kind:   string(req.Kind),
		Inputs: inputs,
		Result: result,
	})
}

// HandleSensitivity returns the growth x discount table for one model
// POST /api/valuation/{kind}/sensitivity
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sens, err := h.analyzers.Analyzer().RunSensitivity(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sens)
}

// HandleValidate runs only the validation layer. An invalid input is still a
// successful response; the result carries the errors.
// POST /api/valuation/{kind}/validate
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := h.readRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := valuation.Validate(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleCompare runs several models side by side
// POST /api/valuation/compare
func (h *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	var reqs []valuation.Request
	if err := h.parseBody(r, &reqs); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, valuation.RunAll(reqs))
}

// readRequest decodes the body into the inputs for the {kind} path segment.
func (h *Handler) readRequest(r *http.Request) (valuation.Request, error) {
	kind, err := valuation.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return valuation.Request{}, err
	}

	req := valuation.Request{Kind: kind}
	var target interface{}
	switch kind {
	case valuation.KindDCF:
		req.DCF = &models.DCFInputs{}
		target = req.DCF
	case valuation.KindDDM:
		req.DDM = &models.DDMInputs{}
		target = req.DDM
	case valuation.KindEPV:
		req.EPV = &models.EPVInputs{}
		target = req.EPV
	case valuation.KindNAV:
		req.NAV = &models.NAVInputs{}
		target = req.NAV
	}

	if err := h.parseBody(r, target); err != nil {
		return valuation.Request{}, err
	}
	return req, nil
}

// parseBody reads the body with SmartParse, so repaired JSON and Hjson are
// accepted as well as strict JSON.
func (h *Handler) parseBody(r *http.Request, target interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrUnparseable, err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return errEmptyBody
	}
	if _, err := utils.SmartParse(string(body), target); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// ANALYSIS
// =============================================================================

type roicRequest struct {
	Financials models.Financials  `json:"financials"`
	WACC       *models.WACCInputs `json:"wacc,omitempty"`
}

type moatRequest struct {
	Financials models.Financials     `json:"financials"`
	Overrides  *models.MoatOverrides `json:"overrides,omitempty"`
}

type analysisResponse struct {
	DataQuality *validate.Result `json:"data_quality"`
	Analysis    interface{}      `json:"analysis"`
}

// HandleROIC analyzes historical returns on invested capital
// POST /api/analysis/roic
func (h *Handler) HandleROIC(w http.ResponseWriter, r *http.Request) {
	var req roicRequest
	if err := h.parseBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysisResponse{
		DataQuality: validate.ValidateFinancials(req.Financials),
		Analysis:    quality.AnalyzeROIC(req.Financials, req.WACC),
	})
}

// HandleMoat assesses the economic moat
// POST /api/analysis/moat
func (h *Handler) HandleMoat(w http.ResponseWriter, r *http.Request) {
	var req moatRequest
	if err := h.parseBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysisResponse{
		DataQuality: validate.ValidateFinancials(req.Financials),
		Analysis:    quality.CalculateMoatFromFinancials(req.Financials, req.Overrides),
	})
}

// HandleImplied back-solves tax, interest and capex assumptions
// POST /api/analysis/implied
func (h *Handler) HandleImplied(w http.ResponseWriter, r *http.Request) {
	var req roicRequest
	if err := h.parseBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, analysisResponse{
		DataQuality: validate.ValidateFinancials(req.Financials),
		Analysis:    quality.CalculateImpliedMetrics(req.Financials),
	})
}

type deriveRequest struct {
	Kind               valuation.CalculatorKind `json:"kind"`
	Financials         models.Financials        `json:"financials"`
	DiscountRate       float64                  `json:"discount_rate,omitempty"`
	TerminalGrowthRate float64                  `json:"terminal_growth_rate,omitempty"`
	SharesOutstanding  float64                  `json:"shares_outstanding"`
}

type deriveResponse struct {
	Request valuation.Request      `json:"request"`
	Growth  *models.GrowthEstimate `json:"growth,omitempty"`
}

// HandleDeriveInputs builds DCF or NAV inputs from statements, ready to post
// to /api/valuation/{kind}.
// POST /api/analysis/inputs
func (h *Handler) HandleDeriveInputs(w http.ResponseWriter, r *http.Request) {
	var req deriveRequest
	if err := h.parseBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	out := deriveResponse{Request: valuation.Request{Kind: req.Kind}}
	switch req.Kind {
	case valuation.KindDCF:
		in, growth, err := valuation.DCFInputsFromFinancials(req.Financials, req.DiscountRate, req.TerminalGrowthRate, req.SharesOutstanding)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out.Request.DCF = &in
		out.Growth = &growth
	case valuation.KindNAV:
		in, err := valuation.NAVInputsFromFinancials(req.Financials, req.SharesOutstanding)
		if err != nil {
			h.writeError(w, err)
			return
		}
		out.Request.NAV = &in
	default:
		h.writeError(w, fmt.Errorf("%w: %q cannot be derived from statements", valuation.ErrUnknownKind, req.Kind))
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HISTORY
// =============================================================================

// HandleListHistory lists recorded runs, newest first
// GET /api/history?ticker=KO&limit=N
func (h *Handler) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	runs, err := h.history.List(r.Context(), r.URL.Query().Get("ticker"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}

// HandleGetRun returns one recorded run
// GET /api/history/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, run)
}

// HandleReport renders a recorded run
// GET /api/history/{id}/report?format=md|html
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	run, err := h.history.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var (
		body        string
		contentType string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "md", "markdown":
		body, err = report.Markdown(run)
		contentType = "text/markdown; charset=utf-8"
	case "html":
		body, err = report.HTML(run)
		contentType = "text/html; charset=utf-8"
	default:
		http.Error(w, fmt.Sprintf("Unknown report format: %s", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// =============================================================================
// RESPONSES
// =============================================================================

type errorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

// statusFor maps engine and store errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, valuation.ErrValidation), errors.Is(err, valuation.ErrDomain):
		return http.StatusUnprocessableEntity
	case errors.Is(err, utils.ErrUnparseable), errors.Is(err, errEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrRunNotFound), errors.Is(err, valuation.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, valuation.ErrNoCashFlows), errors.Is(err, valuation.ErrNoBalanceSheets):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *valuation.ValidationError
	if errors.As(err, &verr) {
		resp.Messages = verr.Messages
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Request failed")
		resp.Error = "internal error"
	} else {
		h.log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
