package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"intrinsic_valuation/pkg/core/valuation"
)

// MaxGridPoints bounds each sensitivity axis.
const MaxGridPoints = 25

// Settings holds the sensitivity grids shared by all requests. They can be
// switched at runtime.
type Settings struct {
	mu   sync.RWMutex
	opts valuation.SensitivityOptions
}

// NewSettings starts from opts with defaults filled in.
func NewSettings(opts valuation.SensitivityOptions) *Settings {
	return &Settings{opts: valuation.NewAnalyzer(opts).Options()}
}

// Analyzer builds an analyzer for the current grids.
func (s *Settings) Analyzer() *valuation.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return valuation.NewAnalyzer(s.opts)
}

// Update replaces every non-empty grid and a positive worker count.
func (s *Settings) Update(u SensitivitySettings) error {
	for name, grid := range map[string][]float64{
		"growth_offsets":    u.GrowthOffsets,
		"discount_offsets":  u.DiscountOffsets,
		"level_offsets":     u.LevelOffsets,
		"capex_multipliers": u.CapexMultipliers,
	} {
		if err := checkGrid(name, grid); err != nil {
			return err
		}
	}
	if u.Workers < 0 {
		return errors.New("workers must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(u.GrowthOffsets) > 0 {
		s.opts.GrowthOffsets = append([]float64{}, u.GrowthOffsets...)
	}
	if len(u.DiscountOffsets) > 0 {
		s.opts.DiscountOffsets = append([]float64{}, u.DiscountOffsets...)
	}
	if len(u.LevelOffsets) > 0 {
		s.opts.LevelOffsets = append([]float64{}, u.LevelOffsets...)
	}
	if len(u.CapexMultipliers) > 0 {
		s.opts.CapexMultipliers = append([]float64{}, u.CapexMultipliers...)
	}
	if u.Workers > 0 {
		s.opts.Workers = u.Workers
	}
	return nil
}

func checkGrid(name string, grid []float64) error {
	if len(grid) > MaxGridPoints {
		return fmt.Errorf("%s has %d points, at most %d allowed", name, len(grid), MaxGridPoints)
	}
	for _, v := range grid {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must contain finite numbers", name)
		}
	}
	return nil
}

// SensitivitySettings is the wire form of the grids.
type SensitivitySettings struct {
	GrowthOffsets    []float64 `json:"growth_offsets"`
	DiscountOffsets  []float64 `json:"discount_offsets"`
	LevelOffsets     []float64 `json:"level_offsets"`
	CapexMultipliers []float64 `json:"capex_multipliers"`
	Workers          int       `json:"workers"`
}

func (s *Settings) snapshot() SensitivitySettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SensitivitySettings{
		GrowthOffsets:    append([]float64{}, s.opts.GrowthOffsets...),
		DiscountOffsets:  append([]float64{}, s.opts.DiscountOffsets...),
		LevelOffsets:     append([]float64{}, s.opts.LevelOffsets...),
		CapexMultipliers: append([]float64{}, s.opts.CapexMultipliers...),
		Workers:          s.opts.Workers,
	}
}

type Response struct {
	Kinds          []valuation.CalculatorKind `json:"kinds"`
	HistoryBackend string                     `json:"history_backend"`
	Sensitivity    SensitivitySettings        `json:"sensitivity"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	settings       *Settings
	historyBackend string
	log            zerolog.Logger
}

// NewHandler creates a new config handler
func NewHandler(settings *Settings, historyBackend string, log zerolog.Logger) *Handler {
	return &Handler{
		settings:       settings,
		historyBackend: historyBackend,
		log:            log.With().Str("handler", "config").Logger(),
	}
}

// RegisterRoutes mounts the config endpoints on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/config", h.HandleConfig)
	r.Put("/api/config/sensitivity", h.HandleSwitch)
}

// HandleConfig returns the effective settings
// GET /api/config
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{
		Kinds:          valuation.Kinds,
		HistoryBackend: h.historyBackend,
		Sensitivity:    h.settings.snapshot(),
	})
}

// HandleSwitch replaces the sensitivity grids
// PUT /api/config/sensitivity
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SensitivitySettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.settings.Update(req); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.log.Info().Interface("sensitivity", h.settings.snapshot()).Msg("Sensitivity grids switched")
	h.HandleConfig(w, r)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}
