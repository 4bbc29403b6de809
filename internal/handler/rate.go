package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/schedule"
	"github.com/segyhp/credit-risk-engine/pkg/response"
)

type RateService interface {
	Record(ctx context.Context, point domain.RatePoint) error
	Current(ctx context.Context, indicator domain.BaseRateIndicator) (decimal.Decimal, error)
	History(ctx context.Context, indicator domain.BaseRateIndicator) (schedule.RateHistory, error)
}

// RecalculationTrigger asks for floating schedules to be repriced as of a day.
type RecalculationTrigger interface {
	Submit(ctx context.Context, today time.Time) uuid.UUID
}

type RateHandler struct {
	rates   RateService
	trigger RecalculationTrigger
	now     func() time.Time
}

// NewRateHandler accepts a nil trigger.
func NewRateHandler(rates RateService, trigger RecalculationTrigger) *RateHandler {
	return &RateHandler{rates: rates, trigger: trigger, now: time.Now}
}

type currentRate struct {
	Indicator domain.BaseRateIndicator `json:"indicator"`
	Rate      decimal.Decimal          `json:"rate"`
}

func indicator(r *http.Request) (domain.BaseRateIndicator, bool) {
	ind := domain.BaseRateIndicator(strings.ToUpper(mux.Vars(r)["indicator"]))
	return ind, ind.IsFloating()
}

// Record handles POST /rates. Schedules are repriced in the background once
// a burst of uploads settles.
func (h *RateHandler) Record(w http.ResponseWriter, r *http.Request) {
	var point domain.RatePoint
	if err := decode(r, &point); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.rates.Record(r.Context(), point); err != nil {
		response.FromError(w, "Failed to record rate", err)
		return
	}
	if h.trigger != nil {
		h.trigger.Submit(context.WithoutCancel(r.Context()), h.now())
	}
	response.Created(w, point)
}

func (h *RateHandler) Current(w http.ResponseWriter, r *http.Request) {
	ind, ok := indicator(r)
	if !ok {
		response.BadRequest(w, "Unknown rate indicator", nil)
		return
	}

	rate, err := h.rates.Current(r.Context(), ind)
	if err != nil {
		response.FromError(w, "Failed to get current rate", err)
		return
	}
	response.Success(w, currentRate{Indicator: ind, Rate: rate})
}

func (h *RateHandler) History(w http.ResponseWriter, r *http.Request) {
	ind, ok := indicator(r)
	if !ok {
		response.BadRequest(w, "Unknown rate indicator", nil)
		return
	}

	history, err := h.rates.History(r.Context(), ind)
	if err != nil {
		response.FromError(w, "Failed to get rate history", err)
		return
	}
	response.Success(w, history)
}

func (h *RateHandler) Register(router *mux.Router) {
	router.HandleFunc("/rates", h.Record).Methods(http.MethodPost)
	router.HandleFunc("/rates/{indicator}", h.History).Methods(http.MethodGet)
	router.HandleFunc("/rates/{indicator}/current", h.Current).Methods(http.MethodGet)
}
