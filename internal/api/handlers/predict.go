// Package handlers contains the HTTP handler implementations for the
// crop-price prediction API. Handlers depend on locally-defined service
// interfaces so that tests can inject mocks without importing concrete
// service packages.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agripredict/internal/core"
	"agripredict/internal/types"
)

// PredictionServiceInterface defines the service contract for the predict
// handler. Matches the prediction.Service API but is defined locally to avoid
// tight coupling per the handler injection pattern.
type PredictionServiceInterface interface {
	Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResponse, error)
	PredictBatch(ctx context.Context, reqs []types.PredictionRequest) ([]*types.PredictionResponse, error)
}

// PredictHandler maps HTTP requests to prediction service methods.
type PredictHandler struct {
	service   PredictionServiceInterface
	validator *core.Validator
	logger    *slog.Logger
}

// NewPredictHandler creates a new PredictHandler with the provided dependencies.
func NewPredictHandler(
	svc PredictionServiceInterface,
	val *core.Validator,
	logger *slog.Logger,
) *PredictHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictHandler{
		service:   svc,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the prediction endpoints onto the mux.
func (h *PredictHandler) RegisterRoutes(r chi.Router) {
	r.Post("/predict", h.HandlePredict)
	r.Post("/predict/batch", h.HandlePredictBatch)
}

// predictRequest is the wire-level prediction request. All eleven fields are
// required; pointer types keep zero values (temperature 0, supply 0)
// representable while still letting the validator reject absent fields.
//
// Month is deliberately not range-checked here: out-of-range months fall
// through to the engine's neutral seasonal factor rather than failing
// validation.
type predictRequest struct {
	CropType        *string  `json:"crop_type" validate:"required"`
	State           *string  `json:"state" validate:"required"`
	City            *string  `json:"city" validate:"required"`
	Year            *int     `json:"year" validate:"required"`
	Month           *int     `json:"month" validate:"required"`
	Season          *string  `json:"season" validate:"required"`
	Temperature     *float64 `json:"temperature" validate:"required"`
	Rainfall        *float64 `json:"rainfall" validate:"required"`
	Supply          *float64 `json:"supply" validate:"required"`
	Demand          *float64 `json:"demand" validate:"required"`
	FertilizerUsage *float64 `json:"fertilizer_usage" validate:"required"`
}

// toDomain converts the validated wire request into the domain record.
// Must only be called after validation has established all fields are present.
func (p *predictRequest) toDomain() types.PredictionRequest {
	return types.PredictionRequest{
		CropType:        *p.CropType,
		State:           *p.State,
		City:            *p.City,
		Year:            *p.Year,
		Month:           *p.Month,
		Season:          *p.Season,
		Temperature:     *p.Temperature,
		Rainfall:        *p.Rainfall,
		Supply:          *p.Supply,
		Demand:          *p.Demand,
		FertilizerUsage: *p.FertilizerUsage,
	}
}

// batchPredictRequest wraps up to 50 prediction requests.
type batchPredictRequest struct {
	Requests []predictRequest `json:"requests" validate:"required,min=1,max=50,dive"`
}

// batchPredictResponse returns per-request results in input order.
type batchPredictResponse struct {
	Results []*types.PredictionResponse `json:"results"`
}

// HandlePredict handles POST /predict.
//  1. Decode the strict JSON body.
//  2. Validate all eleven required fields.
//  3. Call the prediction service.
//  4. Return the PredictionResponse as a bare JSON body.
//
// Validation failures never reach the service.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	resp, err := h.service.Predict(r.Context(), req.toDomain())
	if err != nil {
		h.logger.Error("prediction failed",
			"error", err,
			"request_id", types.GetRequestID(r.Context()),
		)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, resp)
}

// HandlePredictBatch handles POST /predict/batch. Results preserve request
// order; a failure on any element fails the whole batch.
func (h *PredictHandler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req batchPredictRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		core.Error(w, r, err)
		return
	}

	domainReqs := make([]types.PredictionRequest, len(req.Requests))
	for i := range req.Requests {
		domainReqs[i] = req.Requests[i].toDomain()
	}

	results, err := h.service.PredictBatch(r.Context(), domainReqs)
	if err != nil {
		h.logger.Error("batch prediction failed",
			"error", err,
			"request_id", types.GetRequestID(r.Context()),
		)
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, batchPredictResponse{Results: results})
}
