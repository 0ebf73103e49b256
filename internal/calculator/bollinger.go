package calculator

import "math"

// Bands is a Bollinger envelope at the last bar.
type Bands struct {
	Middle float64
	Upper  float64
	Lower  float64
}

// CalculateBollinger returns SMA(period) ± k population standard deviations
// over the trailing period closes.
func CalculateBollinger(closes []float64, period int, k float64) (Bands, error) {
	mid, err := CalculateSMA(closes, period)
	if err != nil {
		return Bands{}, err
	}
	sumSq := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - mid
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(period))
	return Bands{Middle: mid, Upper: mid + k*sd, Lower: mid - k*sd}, nil
}

// Oversold reports whether price touches or breaks the lower band.
func (b Bands) Oversold(price float64) bool {
	return price <= b.Lower
}
