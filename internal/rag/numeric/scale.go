package numeric

import (
	"fmt"
	"math"
	"strconv"
)

// ScaleParams remembers the range needed to reverse a min-max scaling.
type ScaleParams struct {
	Min float64
	Max float64
}

// Scale maps values onto [0,1] by min-max normalization. A degenerate range
// (all values equal) maps everything to 0.5.
func Scale(values map[string]float64) (map[string]float64, ScaleParams) {
	params := ScaleParams{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		params.Min = math.Min(params.Min, v)
		params.Max = math.Max(params.Max, v)
	}

	scaled := make(map[string]float64, len(values))
	if params.Max == params.Min {
		for k := range values {
			scaled[k] = 0.5
		}
		return scaled, params
	}
	for k, v := range values {
		scaled[k] = (v - params.Min) / (params.Max - params.Min)
	}
	return scaled, params
}

// Descale reverses Scale for a single value.
func Descale(scaled float64, params ScaleParams) float64 {
	return scaled*(params.Max-params.Min) + params.Min
}

// FormatValue renders a computed value the way it appears in answers:
// grouped thousands for large magnitudes, two decimals otherwise.
func FormatValue(v float64) string {
	if math.Abs(v) >= 1000 {
		return groupThousands(math.Round(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatScaled renders a scaled value with the fixed precision used when it
// was handed to the model, so the same rendering can be found and replaced.
func FormatScaled(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func groupThousands(v float64) string {
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', 0, 64)
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
