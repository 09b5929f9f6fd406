package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// ViewHandler is the HTTP surface over the view engine.
type ViewHandler struct {
	engine *ViewEngine
}

func NewViewHandler(db *gorm.DB) *ViewHandler {
	return &ViewHandler{engine: NewViewEngine(db)}
}

// parseViewQuery reads ?axis=&group_by=&year=&search= into a ViewQuery.
func parseViewQuery(r *http.Request) (ViewQuery, error) {
	q := ViewQuery{
		Axis:    r.URL.Query().Get("axis"),
		GroupBy: r.URL.Query().Get("group_by"),
		Search:  r.URL.Query().Get("search"),
	}
	if q.Axis == "" {
		return q, errors.New("axis is required")
	}
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil || year < 1 {
			return q, errors.New("invalid year")
		}
		if !recordAxis(q.Axis) {
			return q, errors.New("year filter only applies to vaccination, disease and predation")
		}
		q.Year = year
	}
	return q, nil
}

// Browse runs a view query and returns the rendered table.
func (h *ViewHandler) Browse(w http.ResponseWriter, r *http.Request) {
	q, err := parseViewQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.engine.Execute(r.Context(), q)
	if err != nil {
		if errors.Is(err, errUnknownAxis) || errors.Is(err, errBadDimension) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Printf("view %s: %v", q.Axis, err)
		http.Error(w, "could not run view query", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Options describes the browsable axes, their grouping dimensions and the
// selectable years so clients never hardcode the contract.
func (h *ViewHandler) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"axes":  AllowedDimensions,
		"years": YearOptions(time.Now()),
	})
}
