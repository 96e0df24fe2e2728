package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/heatloss"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/model"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
)

const maxBodyBytes = 1 << 20

// profileRequest carries optional profile sections. Nil sections use the
// server defaults.
type profileRequest struct {
	Building   *model.BuildingProfile  `json:"building,omitempty"`
	HeatLoss   *heatloss.Overrides     `json:"heat_loss,omitempty"`
	Equipment  *model.EquipmentProfile `json:"equipment,omitempty"`
	Thermostat *model.Thermostat       `json:"thermostat,omitempty"`
	Rates      *model.UtilityRates     `json:"rates,omitempty"`
}

func (s *Server) profile(req profileRequest) service.Profile {
	p := s.defaults
	if req.Building != nil {
		p.Building = *req.Building
	}
	if req.HeatLoss != nil {
		p.HeatLoss = *req.HeatLoss
	}
	if req.Equipment != nil {
		p.Equipment = *req.Equipment
	}
	if req.Thermostat != nil {
		p.Thermostat = *req.Thermostat
	}
	if req.Rates != nil {
		p.Rates = *req.Rates
	}
	return p
}

type billRequest struct {
	profileRequest
	Year       int      `json:"year"`
	Month      int      `json:"month"`
	ActualKWh  *float64 `json:"actual_kwh"`
	ActualCost *float64 `json:"actual_cost,omitempty"`
	Save       bool     `json:"save"`
}

func (b billRequest) bill() (service.Bill, error) {
	if b.ActualKWh == nil {
		return service.Bill{}, fmt.Errorf("actual_kwh is required: %w", model.ErrInvalidBill)
	}
	return service.Bill{
		Year:       b.Year,
		Month:      time.Month(b.Month),
		ActualKWh:  *b.ActualKWh,
		ActualCost: b.ActualCost,
	}, nil
}

type heatLossResponse struct {
	model.HeatLossResult
	DesignLoadBTU float64 `json:"design_load_btu"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) heatLoss(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hl, err := s.svc.HeatLoss(s.profile(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, heatLossResponse{HeatLossResult: hl, DesignLoadBTU: hl.DesignLoadBTU()})
}

func (s *Server) annualEstimate(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	est, err := s.svc.Annual(r.Context(), s.profile(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *Server) expected(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	month, _ := strconv.Atoi(mux.Vars(r)["month"])
	exp, err := s.svc.Expected(r.Context(), s.profile(req), time.Month(month))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) diagnose(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !decodeBody(w, r, &req) {
		return
	}
	bill, err := req.bill()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	d, err := s.svc.Diagnose(r.Context(), s.profile(req.profileRequest), bill, req.Save)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	hist, err := s.svc.LoadHistory(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": hist, "count": len(hist)})
}

func (s *Server) putHistory(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if !decodeBody(w, r, &req) {
		return
	}
	vars := mux.Vars(r)
	req.Year, _ = strconv.Atoi(vars["year"])
	req.Month, _ = strconv.Atoi(vars["month"])

	bill, err := req.bill()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rec, err := s.svc.Record(r.Context(), s.profile(req.profileRequest), bill)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) trend(w http.ResponseWriter, r *http.Request) {
	window := 0
	if raw := r.URL.Query().Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "window must be a non-negative integer")
			return
		}
		window = n
	}
	t, err := s.svc.Trend(r.Context(), window)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// decodeBody reads a JSON body. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidProfile),
		errors.Is(err, model.ErrInvalidClimateData),
		errors.Is(err, model.ErrInvalidBill):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrUndefinedBaseline):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNoNormals):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
