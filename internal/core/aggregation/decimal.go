package aggregation

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// displacementPlaces is the rounding applied to average displacements.
const displacementPlaces = 2

// NullFromFloat converts a scan value into a nullable decimal. NaN and infinities
// are undefined feature values.
func NullFromFloat(f float64) decimal.NullDecimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// NullFromInt wraps an integer feature value.
func NullFromInt(v int) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(int64(v)))
}

// nanMean averages values, skipping NaN entries. An empty or all-NaN input yields NaN.
func nanMean(values []float64) float64 {
	var (
		sum float64
		n   int
	)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// roundedMean is the displacement average as emitted in feature records. The
// exact binary value is rounded half to even, so 0.125 becomes 0.12 and 2.675
// (stored just below the tie) becomes 2.67.
func roundedMean(values []float64) decimal.NullDecimal {
	mean := nanMean(values)
	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(strconv.FormatFloat(mean, 'f', displacementPlaces, 64)))
}
