package trends

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"jobpulse/trends-service/internal/bucket"
	"jobpulse/trends-service/internal/store"
)

const defaultQueryLimit = 20

// Handler exposes the read-side queries over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches the query endpoints to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /trends/top", h.handleTop)
	mux.HandleFunc("GET /trends/rising", h.handleRising)
	mux.HandleFunc("GET /trends/technology", h.handleDetail)
	mux.HandleFunc("GET /trends/totals", h.handleTotals)
}

func (h *Handler) handleTop(w http.ResponseWriter, r *http.Request) {
	region, period, limit := queryParams(r)
	rows, err := h.svc.TopTechnologies(r.Context(), region, period, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"region": region, "period": period, "items": rows,
	})
}

func (h *Handler) handleRising(w http.ResponseWriter, r *http.Request) {
	region, period, limit := queryParams(r)
	rows, err := h.svc.RisingTechnologies(r.Context(), region, period, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"region": region, "period": period, "items": rows,
	})
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	region, period, _ := queryParams(r)
	detail, err := h.svc.TechnologyDetail(r.Context(), name, region, period)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	_, period, _ := queryParams(r)
	rows, err := h.svc.trends.Totals(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"period": period, "totals": rows})
}

// queryParams reads the common query parameters, defaulting to the GLOBAL
// region, the current ISO week, and a small page.
func queryParams(r *http.Request) (region, period string, limit int) {
	q := r.URL.Query()
	region = q.Get("region")
	if region == "" {
		region = RegionGlobal
	}
	period = q.Get("period")
	if period == "" {
		period = bucket.ToWeek(time.Now().UTC())
	}
	limit = defaultQueryLimit
	if s := q.Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	return region, period, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[trends] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
