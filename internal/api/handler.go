package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eugenenazirov/packer/internal/knapsack"
	"github.com/eugenenazirov/packer/internal/parser"
	"github.com/eugenenazirov/packer/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxRequestBytes = 1 << 20

// Packer packs newline-separated package lines.
type Packer interface {
	PackText(input string) ([]knapsack.Selection, error)
}

// Handler wires packer and storage dependencies into HTTP handlers.
type Handler struct {
	packer  Packer
	storage storage.Storage

	clock func() time.Time

	mu              sync.RWMutex
	limitsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p Packer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		packer:  p,
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.limitsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetLimits(w http.ResponseWriter, r *http.Request) {
	_ = r
	limits, err := h.storage.GetLimits()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitsResponse{
		Limits:    limits,
		UpdatedAt: h.currentLimitsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutLimits(w http.ResponseWriter, r *http.Request) {
	var req parser.Limits
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetLimits(req); err != nil {
		if errors.Is(err, storage.ErrInvalidLimits) {
			writeError(w, http.StatusBadRequest, "Invalid limits", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markLimitsUpdated()

	limits, err := h.storage.GetLimits()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := limitsResponse{
		Limits:    limits,
		UpdatedAt: h.currentLimitsUpdatedAt(),
		Message:   "Limits updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req packRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "Invalid request", "input must contain at least one package line")
		return
	}

	start := time.Now()
	selections, err := h.packer.PackText(req.Input)
	elapsed := time.Since(start)

	if err != nil {
		if parser.Reason(err) != "other" {
			writeError(w, http.StatusUnprocessableEntity, "Invalid package input", err.Error(),
				"Each line must look like: 81 : (1,53.38,€45) (2,88.62,€98)")
			return
		}
		writeInternalError(w, err)
		return
	}

	results := make([]packResult, 0, len(selections))
	lines := make([]string, 0, len(selections))
	for i, s := range selections {
		results = append(results, packResult{
			Line:        i + 1,
			WeightLimit: s.WeightLimit,
			Indices:     s.Indices(),
			Output:      s.String(),
			TotalWeight: s.TotalWeight(),
			TotalCost:   s.TotalCost(),
		})
		lines = append(lines, s.String())
	}

	resp := packResponse{
		Results:           results,
		Output:            strings.Join(lines, "\n"),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) currentLimitsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.limitsUpdatedAt
}

func (h *Handler) markLimitsUpdated() {
	h.mu.Lock()
	h.limitsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type packRequest struct {
	Input string `json:"input"`
}

type packResult struct {
	Line        int             `json:"line"`
	WeightLimit int             `json:"weightLimit"`
	Indices     []int           `json:"indices"`
	Output      string          `json:"output"`
	TotalWeight decimal.Decimal `json:"totalWeight"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

type packResponse struct {
	Results           []packResult `json:"results"`
	Output            string       `json:"output"`
	CalculationTimeMs int64        `json:"calculationTimeMs"`
}

type limitsResponse struct {
	parser.Limits
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
