package handler

import (
	"context"
	"net/http"
	"tle_zone_dashboard/internal/app/service"
	"tle_zone_dashboard/internal/common"
	"tle_zone_dashboard/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type statsService interface {
	Activity(ctx context.Context, period model.Period, rng model.Range) ([]service.ActivityPoint, error)
}

type StatsHandler struct {
	statsService statsService
}

func NewStatsHandler(s statsService) *StatsHandler {
	return &StatsHandler{statsService: s}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.activity) // GET /api/v1/stats/activity?period=weekly&start=2024-01-01&end=2024-03-31
}

func (h *StatsHandler) activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := model.ParsePeriod(q.Get("period"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	rng, err := model.NewRange(q.Get("start"), q.Get("end"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	points, err := h.statsService.Activity(r.Context(), period, rng)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"period": period,
		"range":  rng,
		"points": points,
	})
}
