package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apprequests "github.com/bryanwahyu/hydrolens/internal/application/requests"
	"github.com/bryanwahyu/hydrolens/internal/domain/analysis"
	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
	"github.com/bryanwahyu/hydrolens/internal/middleware"
)

type Router struct {
	pipeline *apprequests.Service
	models   analysis.ModelRepository
}

func NewRouter(pipeline *apprequests.Service, models analysis.ModelRepository, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{pipeline: pipeline, models: models}
	mux := chi.NewRouter()

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/requests", r.wrap(r.handleSubmit))
		rt.Get("/requests", r.wrap(r.handleList))
		rt.Get("/requests/{id}", r.wrap(r.handleGet))
		rt.Post("/requests/{id}/cancel", r.wrap(r.handleCancel))
		rt.Post("/requests/{id}/requeue", r.wrap(r.handleRequeue))
		rt.Post("/models", r.wrap(r.handleRegisterModel))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var transition *domain.InvalidTransitionError
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, domain.ErrInvalidRequest):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.As(err, &transition):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, analysis.ErrDuplicateModel):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// POST /v1/requests
// Body: {"model_ids":[1,2],"start_date":"2024-01-01","end_date":"2024-03-31"}
// Request masuk antrian QUEUED; scheduler yang mengeksekusinya.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ModelIDs  []int64 `json:"model_ids"`
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
		CreatedBy string  `json:"created_by"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.InvalidRequestError{Reason: "malformed json body"}
	}

	start, err := parseDate(body.StartDate, "start_date")
	if err != nil {
		return err
	}
	end, err := parseDate(body.EndDate, "end_date")
	if err != nil {
		return err
	}
	if err := middleware.ValidateDateRange(start, end); err != nil {
		return &domain.InvalidRequestError{Reason: err.Error()}
	}
	if err := middleware.ValidateModelIDs(body.ModelIDs); err != nil {
		return &domain.InvalidRequestError{Reason: err.Error()}
	}

	created, err := r.pipeline.Submit(req.Context(), apprequests.SubmitCommand{
		ModelIDs:  body.ModelIDs,
		StartDate: start,
		EndDate:   end,
		CreatedBy: middleware.SanitizeString(body.CreatedBy),
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(created)
}

// GET /v1/requests?status=QUEUED&limit=20
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	status := domain.Status(req.URL.Query().Get("status"))
	if status == "" {
		status = domain.StatusQueued
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	limit = middleware.ValidateLimit(limit)

	list, err := r.pipeline.List(req.Context(), status, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/requests/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := requestID(req)
	if err != nil {
		return err
	}
	found, err := r.pipeline.Get(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(found)
}

// POST /v1/requests/{id}/cancel
func (r *Router) handleCancel(w http.ResponseWriter, req *http.Request) error {
	id, err := requestID(req)
	if err != nil {
		return err
	}
	updated, err := r.pipeline.Cancel(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(updated)
}

// POST /v1/requests/{id}/requeue
// Hanya request FAILED yang boleh kembali ke antrian.
func (r *Router) handleRequeue(w http.ResponseWriter, req *http.Request) error {
	id, err := requestID(req)
	if err != nil {
		return err
	}
	updated, err := r.pipeline.Requeue(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(updated)
}

// POST /v1/models
// Body: {"reservoir_id":1,"parameter_id":2,"model_file":"<b64>","scaler_file":"<b64>"}
// Konten yang identik (hash sama) ditolak 409.
func (r *Router) handleRegisterModel(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ReservoirID int64  `json:"reservoir_id"`
		ParameterID int64  `json:"parameter_id"`
		ModelFile   []byte `json:"model_file"`
		ScalerFile  []byte `json:"scaler_file"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return &domain.InvalidRequestError{Reason: "malformed json body"}
	}
	if len(body.ModelFile) == 0 || len(body.ScalerFile) == 0 {
		return &domain.InvalidRequestError{Reason: "model_file and scaler_file are required"}
	}

	m := &analysis.Model{
		ReservoirID: body.ReservoirID,
		ParameterID: body.ParameterID,
		ModelFile:   body.ModelFile,
		ScalerFile:  body.ScalerFile,
	}
	if err := r.models.Create(req.Context(), m); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(map[string]any{
		"id":              m.ID,
		"model_file_hash": m.ModelFileHash,
	})
}

func requestID(req *http.Request) (domain.RequestID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRequestID(id); err != nil {
		return "", &domain.InvalidRequestError{Reason: err.Error()}
	}
	return domain.RequestID(id), nil
}

func parseDate(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, &domain.InvalidRequestError{Reason: field + " is required"}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &domain.InvalidRequestError{Reason: fmt.Sprintf("%s must be YYYY-MM-DD", field)}
	}
	return t, nil
}
