package calculator

import (
	"errors"
	"fmt"
	"math"

	"SignalScanner/internal/model"
)

var errPeriod = errors.New("period must be positive")

func insufficient(name string, need, got int) error {
	return fmt.Errorf("%s needs %d values, got %d: %w", name, need, got, model.ErrInsufficientHistory)
}

// CalculateSMA computes the simple moving average of the trailing period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errPeriod
	}
	if len(values) < period {
		return 0, insufficient("SMA", period, len(values))
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// CalculateSMASeries returns one SMA value per bar from index period-1 onward.
// Entries before that are NaN.
func CalculateSMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if len(values) < period {
		return nil, insufficient("SMA", period, len(values))
	}
	out := make([]float64, len(values))
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}
	// Each window is summed on its own; a bar's value never depends on earlier sums.
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

// CalculateEMASeries computes the exponential moving average, seeded with the
// SMA of the first period values at index period-1. Earlier entries are NaN.
func CalculateEMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errPeriod
	}
	if len(values) < period {
		return nil, insufficient("EMA", period, len(values))
	}
	out := make([]float64, len(values))
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
		out[i] = math.NaN()
	}
	out[period-1] = sum / float64(period)

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out, nil
}
