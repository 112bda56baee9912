package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"agripredict/internal/types"
)

// ErrNoPrediction is returned when the remote predictor has no result to
// offer. Callers treat it as "absent" and fall through to the deterministic
// engine; it is never surfaced to API clients.
var ErrNoPrediction = errors.New("no remote prediction available")

// PricePredictor is the strategy interface for an optional upstream price
// model. Implementations must not block indefinitely: every network attempt
// carries a bounded timeout.
type PricePredictor interface {
	Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResponse, error)
}

// DisabledPredictor is the default PricePredictor: it always reports absence,
// so the deterministic engine serves every request.
type DisabledPredictor struct{}

// Predict always returns ErrNoPrediction.
func (DisabledPredictor) Predict(context.Context, types.PredictionRequest) (*types.PredictionResponse, error) {
	return nil, ErrNoPrediction
}

// candidateEndpoints are the path shapes tried, in order, against the hosted
// model space. Gradio spaces have exposed their predict function under
// different routes across framework versions; probing the known set keeps the
// client working without pinning a space version.
var candidateEndpoints = []string{
	"/run/predict",
	"/api/predict",
	"/predict",
	"/call/predict",
	"/gradio_api/call/predict",
}

// normalizedConfidence and normalizedChange are the fixed auxiliary metrics
// attached to remote predictions: the hosted model returns only a price, so
// the remaining response fields are synthesized the same way for every remote
// result.
const (
	normalizedCurrentRatio = 0.95
	normalizedConfidence   = 0.8
	normalizedChange       = 5.0
)

// SpaceClientConfig holds the configuration for creating a SpaceHTTPClient.
type SpaceClientConfig struct {
	APIKey         types.SecretString // optional; absence omits the Authorization header
	SpaceURL       string
	AttemptTimeout time.Duration
	Logger         *slog.Logger
}

// SpaceHTTPClient implements PricePredictor against a hosted model space over
// HTTP. Requests route through an UpstreamClient so remote attempts inherit
// the circuit breaker and retry behavior; any failure on any candidate
// endpoint is swallowed and the next endpoint is tried.
type SpaceHTTPClient struct {
	base           *UpstreamClient
	apiKey         types.SecretString
	spaceURL       string
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewSpaceClient creates a SpaceHTTPClient. The httpClient timeout should be
// zero (per-attempt deadlines come from AttemptTimeout via context).
func NewSpaceClient(httpClient *http.Client, cfg SpaceClientConfig) *SpaceHTTPClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}

	base := NewUpstreamClient(
		httpClient,
		"model-space",
		RetryPolicy{
			MaxRetries: 1,
			MinWait:    500 * time.Millisecond,
			MaxWait:    2 * time.Second,
		},
		"AgriPredict/1.0",
	)

	return &SpaceHTTPClient{
		base:           base,
		apiKey:         cfg.APIKey,
		spaceURL:       strings.TrimSuffix(cfg.SpaceURL, "/"),
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// NewSpaceClientWithBase creates a SpaceHTTPClient with a pre-configured
// UpstreamClient. This is useful for testing when you want to control the
// client configuration (e.g., disable retries).
func NewSpaceClientWithBase(base *UpstreamClient, cfg SpaceClientConfig) *SpaceHTTPClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = 30 * time.Second
	}

	return &SpaceHTTPClient{
		base:           base,
		apiKey:         cfg.APIKey,
		spaceURL:       strings.TrimSuffix(cfg.SpaceURL, "/"),
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// spaceRequest is the gradio-shaped payload sent to the model space: the
// eleven request fields as a positional array plus the function index.
type spaceRequest struct {
	Data    []any `json:"data"`
	FnIndex int   `json:"fn_index"`
}

// spaceResponse covers the two response shapes the space has been observed to
// return: a gradio data array, or a bare prediction field.
type spaceResponse struct {
	Data       []float64 `json:"data"`
	Prediction float64   `json:"prediction"`
}

// Predict tries each candidate endpoint in order and returns the first
// successful structured result, normalized to a PredictionResponse. If every
// attempt fails or times out, it returns ErrNoPrediction; no failure here is
// ever fatal to the caller.
func (c *SpaceHTTPClient) Predict(ctx context.Context, req types.PredictionRequest) (*types.PredictionResponse, error) {
	payload := spaceRequest{
		Data: []any{
			req.CropType, req.State, req.City,
			req.Year, req.Month, req.Season,
			req.Temperature, req.Rainfall,
			req.Supply, req.Demand, req.FertilizerUsage,
		},
		FnIndex: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, ErrNoPrediction
	}

	for _, path := range candidateEndpoints {
		if ctx.Err() != nil {
			break
		}

		resp, err := c.tryEndpoint(ctx, c.spaceURL+path, body)
		if err != nil {
			c.logger.Debug("remote prediction attempt failed",
				"endpoint", path,
				"error", err,
			)
			continue
		}
		return resp, nil
	}

	return nil, ErrNoPrediction
}

// tryEndpoint POSTs the payload to a single candidate endpoint with a bounded
// per-attempt timeout and parses the result.
func (c *SpaceHTTPClient) tryEndpoint(ctx context.Context, url string, body []byte) (*types.PredictionResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey.IsSet() {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey.Unmask())
	}

	resp, err := c.base.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}

	var parsed spaceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding space response: %w", err)
	}

	predicted := parsed.Prediction
	if len(parsed.Data) > 0 {
		predicted = parsed.Data[0]
	}

	return &types.PredictionResponse{
		PredictedPrice:   predicted,
		CurrentPrice:     predicted * normalizedCurrentRatio,
		Confidence:       normalizedConfidence,
		ChangePercentage: normalizedChange,
		Unit:             types.PriceUnit,
		Model:            types.ModelRemoteGradio,
	}, nil
}

// maxResponseBodySize caps how much of an upstream response body is read (1 MB).
const maxResponseBodySize = 1 << 20
