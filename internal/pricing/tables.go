package pricing

// basePrices defines the unconditioned reference price per quintal for each
// known crop. Crops absent from the table fall back to defaultBasePrice; an
// unknown crop name is a permissive default, not a validation failure.
var basePrices = map[string]float64{
	"Rice":      2000,
	"Wheat":     1800,
	"Maize":     1500,
	"Pulses":    6000,
	"Soybeans":  3800,
	"Cotton":    5500,
	"Sugarcane": 300,
	"Potato":    1200,
	"Tomato":    1800,
	"Onion":     1400,
}

// defaultBasePrice is used for crop types not present in basePrices.
const defaultBasePrice = 2000

// seasonalFactors maps a calendar month (1-12) to a multiplier approximating
// harvest-cycle price pressure. Months outside 1-12 fall back to the neutral
// factor 1.0.
var seasonalFactors = map[int]float64{
	1:  1.1,
	2:  1.05,
	3:  1.0,
	4:  0.95,
	5:  0.9,
	6:  0.85,
	7:  0.9,
	8:  0.95,
	9:  1.0,
	10: 1.05,
	11: 1.1,
	12: 1.15,
}

// neutralSeasonalFactor applies when the month has no entry in seasonalFactors.
const neutralSeasonalFactor = 1.0

// BasePrice returns the reference price per quintal for the given crop,
// falling back to defaultBasePrice for unknown crops.
func BasePrice(cropType string) float64 {
	if p, ok := basePrices[cropType]; ok {
		return p
	}
	return defaultBasePrice
}

// SeasonalFactor returns the month-indexed price multiplier, falling back to
// the neutral factor for out-of-range months.
func SeasonalFactor(month int) float64 {
	if f, ok := seasonalFactors[month]; ok {
		return f
	}
	return neutralSeasonalFactor
}
