package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/credit-risk-engine/internal/domain"
	"github.com/segyhp/credit-risk-engine/pkg/response"
)

type CreditService interface {
	Create(ctx context.Context, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error)
	Get(ctx context.Context, id int64) (*domain.CreditObligation, error)
	List(ctx context.Context) ([]*domain.CreditObligation, error)
	Update(ctx context.Context, id int64, req *domain.CreateCreditRequest) (*domain.CreateCreditResponse, error)
	Delete(ctx context.Context, id int64) error
	GetSchedule(ctx context.Context, id int64) (domain.Schedule, error)
	EditSchedule(ctx context.Context, id int64, req domain.ScheduleEditRequest) (*domain.ScheduleEditResponse, error)
	SaveSchedule(ctx context.Context, id int64, schedule domain.Schedule) (*domain.ScheduleEditResponse, error)
	ScheduleSummary(ctx context.Context, id int64) (*domain.ScheduleSummary, error)
	PortfolioSummary(ctx context.Context) (*domain.PortfolioSummary, error)
}

type CreditHandler struct {
	service CreditService
}

func NewCreditHandler(service CreditService) *CreditHandler {
	return &CreditHandler{service: service}
}

type saveScheduleRequest struct {
	Schedule domain.Schedule `json:"schedule"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// Create handles POST /credits
func (h *CreditHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCreditRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		response.FromError(w, "Failed to create credit", err)
		return
	}
	response.Created(w, resp)
}

func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	credits, err := h.service.List(r.Context())
	if err != nil {
		response.FromError(w, "Failed to list credits", err)
		return
	}
	response.Success(w, credits)
}

func (h *CreditHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}

	credit, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, "Failed to get credit", err)
		return
	}
	response.Success(w, credit)
}

// Update handles PUT /credits/{id}; the schedule is regenerated.
func (h *CreditHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}
	var req domain.CreateCreditRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	resp, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		response.FromError(w, "Failed to update credit", err)
		return
	}
	response.Success(w, resp)
}

func (h *CreditHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromError(w, "Failed to delete credit", err)
		return
	}
	response.NoContent(w)
}

func (h *CreditHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}

	sched, err := h.service.GetSchedule(r.Context(), id)
	if err != nil {
		response.FromError(w, "Failed to get schedule", err)
		return
	}
	response.Success(w, sched)
}

// EditSchedule handles POST /credits/{id}/schedule/edit. The edited schedule
// is returned for review and is not stored.
func (h *CreditHandler) EditSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}
	var req domain.ScheduleEditRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	resp, err := h.service.EditSchedule(r.Context(), id, req)
	if err != nil {
		response.FromError(w, "Failed to edit schedule", err)
		return
	}
	response.Success(w, resp)
}

// SaveSchedule handles PUT /credits/{id}/schedule and replaces the whole
// stored schedule.
func (h *CreditHandler) SaveSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}
	var req saveScheduleRequest
	if err := decode(r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	resp, err := h.service.SaveSchedule(r.Context(), id, req.Schedule)
	if err != nil {
		response.FromError(w, "Failed to save schedule", err)
		return
	}
	response.Success(w, resp)
}

func (h *CreditHandler) ScheduleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.BadRequest(w, "Invalid credit id", nil)
		return
	}

	summary, err := h.service.ScheduleSummary(r.Context(), id)
	if err != nil {
		response.FromError(w, "Failed to summarize schedule", err)
		return
	}
	response.Success(w, summary)
}

func (h *CreditHandler) PortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.PortfolioSummary(r.Context())
	if err != nil {
		response.FromError(w, "Failed to summarize portfolio", err)
		return
	}
	response.Success(w, summary)
}

// Register mounts the credit routes on router.
func (h *CreditHandler) Register(router *mux.Router) {
	router.HandleFunc("/credits", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/credits", h.List).Methods(http.MethodGet)
	router.HandleFunc("/credits/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/credits/{id:[0-9]+}", h.Update).Methods(http.MethodPut)
	router.HandleFunc("/credits/{id:[0-9]+}", h.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/credits/{id:[0-9]+}/schedule", h.GetSchedule).Methods(http.MethodGet)
	router.HandleFunc("/credits/{id:[0-9]+}/schedule", h.SaveSchedule).Methods(http.MethodPut)
	router.HandleFunc("/credits/{id:[0-9]+}/schedule/edit", h.EditSchedule).Methods(http.MethodPost)
	router.HandleFunc("/credits/{id:[0-9]+}/schedule/summary", h.ScheduleSummary).Methods(http.MethodGet)
	router.HandleFunc("/portfolio/summary", h.PortfolioSummary).Methods(http.MethodGet)
}
