package types

// PriceUnit is the fixed unit label for all price fields in a
// PredictionResponse. Prices are quoted per quintal (100 kg).
const PriceUnit = "quintal"

// Model tags identifying which computation path produced a PredictionResponse.
const (
	ModelDeterministic = "deterministic-fallback"
	ModelRemoteGradio  = "huggingface-gradio"
)

// PredictionRequest carries the agricultural-market parameters for a single
// price prediction. It is immutable once constructed; the pricing engine never
// modifies it.
//
// State, City, Season, and FertilizerUsage do not participate in the price
// formula itself, but all eleven fields feed the content-derived seed, so
// changing any of them perturbs the hash-driven variation factors.
type PredictionRequest struct {
	CropType        string  `json:"crop_type"`
	State           string  `json:"state"`
	City            string  `json:"city"`
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	Season          string  `json:"season"`
	Temperature     float64 `json:"temperature"`
	Rainfall        float64 `json:"rainfall"`
	Supply          float64 `json:"supply"`
	Demand          float64 `json:"demand"`
	FertilizerUsage float64 `json:"fertilizer_usage"`
}

// PredictionResponse is the result of a price prediction.
//
// CurrentPrice is derived from PredictedPrice via a second hash-driven
// variation, not observed independently; ChangePercentage relates the two.
type PredictionResponse struct {
	PredictedPrice   float64 `json:"predicted_price"`
	CurrentPrice     float64 `json:"current_price"`
	Confidence       float64 `json:"confidence"`
	ChangePercentage float64 `json:"change_percentage"`
	Unit             string  `json:"unit"`
	Model            string  `json:"model"`
}
