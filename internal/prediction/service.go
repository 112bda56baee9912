// Package prediction implements the price prediction service for the API.
//
// The service orchestrates two sources: an optional remote predictor (hosted
// model space, disabled by default) and the deterministic pricing engine. The
// engine is the authority; remote failures of any kind fall through to it and
// are never surfaced to callers.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"agripredict/internal/external"
	"agripredict/internal/pricing"
	"agripredict/internal/types"
)

const (
	// MaxBatchRequests is the maximum number of requests in a batch call.
	MaxBatchRequests = 50

	// batchConcurrencyLimit caps concurrent per-request computations in a
	// batch. The engine is pure, so the limit only bounds remote predictor
	// fan-out when that path is enabled.
	batchConcurrencyLimit = 10
)

// Service resolves prediction requests to responses.
type Service struct {
	predictor external.PricePredictor
	logger    *slog.Logger
}

// NewService creates a prediction Service. A nil predictor disables the remote
// path entirely.
func NewService(predictor external.PricePredictor, logger *slog.Logger) *Service {
	if predictor == nil {
		predictor = external.DisabledPredictor{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		predictor: predictor,
		logger:    logger,
	}
}

// Predict resolves a single prediction request. The remote predictor is
// consulted first; on absence or any failure the deterministic engine computes
// the response.
func (s *Service) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResponse, error) {
	resp, err := s.predictor.Predict(ctx, req)
	if err == nil {
		s.logger.Info("serving remote model prediction",
			"model", resp.Model,
			"crop_type", req.CropType,
		)
		return resp, nil
	}
	if !errors.Is(err, external.ErrNoPrediction) {
		// Recoverable: remote trouble degrades to the deterministic path.
		s.logger.Warn("remote predictor failed; using deterministic engine",
			"error", err,
		)
	}

	return pricing.Compute(req)
}

// PredictBatch resolves a batch of prediction requests, preserving input
// order in the result slice. Concurrency is bounded; the first computation
// error aborts the batch.
func (s *Service) PredictBatch(ctx context.Context, reqs []types.PredictionRequest) ([]*types.PredictionResponse, error) {
	if len(reqs) > MaxBatchRequests {
		return nil, types.NewAppError(
			types.ErrCodeValidationBatchSize,
			fmt.Sprintf("batch size %d exceeds maximum of %d", len(reqs), MaxBatchRequests),
			nil,
		)
	}

	results := make([]*types.PredictionResponse, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrencyLimit)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			resp, err := s.Predict(gctx, req)
			if err != nil {
				return err
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
