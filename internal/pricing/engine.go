// Package pricing implements the deterministic crop-price engine.
//
// Compute is a pure function: no I/O, no shared mutable state, identical
// inputs always yield identical outputs. "Randomness" in the output is driven
// entirely by an md5 digest of the canonical request content, sliced into
// independent bit ranges so that the price variation, the current-price
// variation, and the confidence look uncorrelated across different inputs
// while staying stable for a given input.
package pricing

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"agripredict/internal/types"
)

// Supply-demand factor clamp bounds. The raw demand/supply ratio is clamped
// into this range regardless of how extreme the inputs are.
const (
	minSupplyDemandFactor = 0.7
	maxSupplyDemandFactor = 1.5
)

// Compute maps a prediction request to a prediction response using the fixed
// reference tables and a content-derived seed.
//
// The only error condition is degenerate arithmetic: if the derived current
// price resolves to zero, the change percentage is undefined and an AppError
// with code computation_degenerate_result is returned instead of a silent
// Inf/NaN. With the current tables this cannot occur for any input (every base
// price and factor is positive), but the guard keeps division-by-zero out of
// the contract.
func Compute(req types.PredictionRequest) (*types.PredictionResponse, error) {
	h := contentSeed(req)

	basePrice := BasePrice(req.CropType)
	seasonal := SeasonalFactor(req.Month)

	// Demand/supply ratio; non-positive supply skips the division entirely.
	ratio := 1.0
	if req.Supply > 0 {
		ratio = req.Demand / req.Supply
	}
	supplyDemand := clamp(ratio, minSupplyDemandFactor, maxSupplyDemandFactor)

	tempFactor := 1.0
	switch {
	case req.Temperature > 35:
		tempFactor = 1.1
	case req.Temperature < 15:
		tempFactor = 1.05
	}

	rainfallFactor := 1.0
	switch {
	case req.Rainfall < 50:
		rainfallFactor = 1.15
	case req.Rainfall > 200:
		rainfallFactor = 0.95
	}

	rawPrice := basePrice * seasonal * supplyDemand * tempFactor * rainfallFactor

	// variation in [0.95, 1.049]
	variation := 0.95 + float64(h%100)/1000
	predicted := math.Round(rawPrice * variation)

	currentVariation := 0.95 + float64((h>>8)%100)/1000
	current := math.Round(predicted * currentVariation)
	if current == 0 {
		return nil, types.NewAppError(
			types.ErrCodeComputationDegenerate,
			"current price resolved to zero; change percentage is undefined",
			nil,
		)
	}

	change := roundTo(((predicted-current)/current)*100, 2)

	// confidence in [0.75, 0.95]
	confidence := roundTo(0.75+float64((h>>16)%200)/1000, 3)

	return &types.PredictionResponse{
		PredictedPrice:   predicted,
		CurrentPrice:     current,
		Confidence:       confidence,
		ChangePercentage: change,
		Unit:             types.PriceUnit,
		Model:            types.ModelDeterministic,
	}, nil
}

// contentSeed derives a stable 32-bit seed from the request by hashing the
// canonical field concatenation and taking the first 8 hex characters of the
// digest as an unsigned integer.
func contentSeed(req types.PredictionRequest) uint32 {
	sum := md5.Sum([]byte(canonicalInput(req)))
	digest := hex.EncodeToString(sum[:])
	h, _ := strconv.ParseUint(digest[:8], 16, 32)
	return uint32(h)
}

// canonicalInput serializes all eleven request fields in declaration order,
// joined with "-". Every field participates so that fields outside the price
// formula (state, city, season, fertilizer usage) still perturb the seed.
func canonicalInput(req types.PredictionRequest) string {
	parts := []string{
		req.CropType,
		req.State,
		req.City,
		strconv.Itoa(req.Year),
		strconv.Itoa(req.Month),
		req.Season,
		formatFloat(req.Temperature),
		formatFloat(req.Rainfall),
		formatFloat(req.Supply),
		formatFloat(req.Demand),
		formatFloat(req.FertilizerUsage),
	}
	return strings.Join(parts, "-")
}

// formatFloat renders a float in the shortest form that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundTo rounds v half-away-from-zero to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
