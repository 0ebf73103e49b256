package calculator

// CrossedAbove reports whether fast was at or below slow at t-1 and strictly
// above it at t. Only those two bars are inspected; an undefined (NaN) value
// at either bar yields false.
func CrossedAbove(fast, slow []float64, t int) bool {
	if t < 1 || t >= len(fast) || t >= len(slow) {
		return false
	}
	return fast[t-1] <= slow[t-1] && fast[t] > slow[t]
}

// GoldenCrossAt evaluates the MA(short)/MA(long) cross at every bar. The
// result is false wherever the long average is not yet defined at t-1.
func GoldenCrossAt(closes []float64, short, long int) ([]bool, error) {
	fast, err := CalculateSMASeries(closes, short)
	if err != nil {
		return nil, err
	}
	slow, err := CalculateSMASeries(closes, long)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(closes))
	for t := range closes {
		out[t] = CrossedAbove(fast, slow, t)
	}
	return out, nil
}

// CalculateGoldenCross reports whether MA(short) crossed above MA(long)
// exactly between the last two bars.
func CalculateGoldenCross(closes []float64, short, long int) (bool, error) {
	if len(closes) < long+1 {
		return false, insufficient("golden cross", long+1, len(closes))
	}
	fast, err := CalculateSMASeries(closes, short)
	if err != nil {
		return false, err
	}
	slow, err := CalculateSMASeries(closes, long)
	if err != nil {
		return false, err
	}
	return CrossedAbove(fast, slow, len(closes)-1), nil
}
