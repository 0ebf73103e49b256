package calculator

// CalculateRSI computes the RSI from simple averages of the gains and losses
// over the trailing period one-bar deltas. Requires at least period+1 closes.
// Returns 100 when no loss occurred in the window.
func CalculateRSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(closes) < period+1 {
		return 0, insufficient("RSI", period+1, len(closes))
	}

	var sumGain, sumLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			sumGain += change
		} else {
			sumLoss -= change // make positive
		}
	}
	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	return clamp(rsi, 0, 100), nil
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
