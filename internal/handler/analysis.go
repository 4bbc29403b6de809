package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/internal/service"
	"github.com/segyhp/credit-risk-engine/pkg/response"
)

type AnalysisService interface {
	Analyze(ctx context.Context, req service.AnalysisRequest) (*service.AnalysisResult, error)
}

type ScenarioService interface {
	Create(ctx context.Context, req *domain.CreateScenarioRequest) (*domain.RateScenario, error)
	List(ctx context.Context, ownerID int64) ([]domain.RateScenario, error)
	Get(ctx context.Context, ownerID, id int64) (*domain.RateScenario, error)
}

type InstrumentService interface {
	Create(ctx context.Context, def *domain.InstrumentDefinition) (*domain.InstrumentDefinition, error)
	List(ctx context.Context) ([]domain.InstrumentDefinition, error)
}

// AnalysisHandler serves scenario analysis together with the scenarios and
// hedging instruments it is run against.
type AnalysisHandler struct {
	analysis    AnalysisService
	scenarios   ScenarioService
	instruments InstrumentService
}

func NewAnalysisHandler(analysis AnalysisService, scenarios ScenarioService, instruments InstrumentService) *AnalysisHandler {
	return &AnalysisHandler{
		analysis:    analysis,
		scenarios:   scenarios,
		instruments: instruments,
	}
}

// ownerID reads the optional owner_id query parameter; absent means public only.
func ownerID(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("owner_id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id >= 0
}

// Analyze handles POST /analysis
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req service.AnalysisRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := h.analysis.Analyze(r.Context(), req)
	if err != nil {
		response.FromError(w, "Failed to analyze portfolio", err)
		return
	}
	response.Success(w, result)
}

func (h *AnalysisHandler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateScenarioRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	sc, err := h.scenarios.Create(r.Context(), &req)
	if err != nil {
		response.FromError(w, "Failed to create scenario", err)
		return
	}
	response.Created(w, sc)
}

func (h *AnalysisHandler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		response.BadRequest(w, "Invalid owner_id", nil)
		return
	}

	list, err := h.scenarios.List(r.Context(), owner)
	if err != nil {
		response.FromError(w, "Failed to list scenarios", err)
		return
	}
	response.Success(w, list)
}

func (h *AnalysisHandler) GetScenario(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid scenario id", nil)
		return
	}
	owner, ok := ownerID(r)
	if !ok {
		response.BadRequest(w, "Invalid owner_id", nil)
		return
	}

	sc, err := h.scenarios.Get(r.Context(), owner, id)
	if err != nil {
		response.FromError(w, "Failed to get scenario", err)
		return
	}
	response.Success(w, sc)
}

func (h *AnalysisHandler) CreateInstrument(w http.ResponseWriter, r *http.Request) {
	var def domain.InstrumentDefinition
	if err := decode(r, &def); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	created, err := h.instruments.Create(r.Context(), &def)
	if err != nil {
		response.FromError(w, "Failed to create instrument", err)
		return
	}
	response.Created(w, created)
}

func (h *AnalysisHandler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	list, err := h.instruments.List(r.Context())
	if err != nil {
		response.FromError(w, "Failed to list instruments", err)
		return
	}
	response.Success(w, list)
}

func (h *AnalysisHandler) Register(router *mux.Router) {
	router.HandleFunc("/analysis", h.Analyze).Methods(http.MethodPost)
	router.HandleFunc("/scenarios", h.CreateScenario).Methods(http.MethodPost)
	router.HandleFunc("/scenarios", h.ListScenarios).Methods(http.MethodGet)
	router.HandleFunc("/scenarios/{id:[0-9]+}", h.GetScenario).Methods(http.MethodGet)
	router.HandleFunc("/instruments", h.CreateInstrument).Methods(http.MethodPost)
	router.HandleFunc("/instruments", h.ListInstruments).Methods(http.MethodGet)
}
