package calculator

import "errors"

// CalculateChangePct returns the one-bar change of the last close in percent.
func CalculateChangePct(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, insufficient("change", 2, len(closes))
	}
	prev := closes[len(closes)-2]
	if prev == 0 {
		return 0, errors.New("previous close is zero")
	}
	return (closes[len(closes)-1] - prev) / prev * 100, nil
}

// CalculateDeviationPct returns how far price sits from the moving average, in percent.
func CalculateDeviationPct(price, ma float64) (float64, error) {
	if ma == 0 {
		return 0, errors.New("moving average is zero")
	}
	return (price - ma) / ma * 100, nil
}

// CalculateVolumeRatio divides the latest volume by the mean of the preceding
// window volumes, excluding the latest. A zero baseline yields 0.
func CalculateVolumeRatio(volumes []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, errPeriod
	}
	if len(volumes) < window+1 {
		return 0, insufficient("volume ratio", window+1, len(volumes))
	}
	base, err := CalculateSMA(volumes[:len(volumes)-1], window)
	if err != nil {
		return 0, err
	}
	if base == 0 {
		return 0, nil
	}
	return volumes[len(volumes)-1] / base, nil
}
