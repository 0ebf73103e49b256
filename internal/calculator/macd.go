package calculator

import "math"

// MACDResult holds the MACD and signal lines, NaN where undefined.
type MACDResult struct {
	Line   []float64
	Signal []float64
}

// MinMACDBars is the number of closes needed for a defined signal line at the
// last bar and at the bar before it.
func MinMACDBars(slow, signal int) int {
	return slow + signal
}

// CalculateMACD computes EMA(fast) - EMA(slow) and its EMA(signal) line.
// The signal line starts from the first defined MACD value.
func CalculateMACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, errPeriod
	}
	if need := slow + signal - 1; len(closes) < need {
		return nil, insufficient("MACD", need, len(closes))
	}
	emaFast, err := CalculateEMASeries(closes, fast)
	if err != nil {
		return nil, err
	}
	emaSlow, err := CalculateEMASeries(closes, slow)
	if err != nil {
		return nil, err
	}

	first := slow - 1
	if fast > slow {
		first = fast - 1
	}
	line := make([]float64, len(closes))
	for i := range closes {
		if i < first {
			line[i] = math.NaN()
			continue
		}
		line[i] = emaFast[i] - emaSlow[i]
	}

	sig, err := CalculateEMASeries(line[first:], signal)
	if err != nil {
		return nil, err
	}
	signalLine := make([]float64, len(closes))
	for i := range signalLine {
		if i < first {
			signalLine[i] = math.NaN()
			continue
		}
		signalLine[i] = sig[i-first]
	}
	return &MACDResult{Line: line, Signal: signalLine}, nil
}

// BuyCross reports whether the MACD line moved from at-or-below the signal line
// at the previous bar to above it at the last bar.
func (m *MACDResult) BuyCross() bool {
	return CrossedAbove(m.Line, m.Signal, len(m.Line)-1)
}
