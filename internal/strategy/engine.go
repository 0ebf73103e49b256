package strategy

import "SignalScanner/internal/model"

// Signals is the classifier input taken from an indicator snapshot.
type Signals struct {
	GoldenCross bool
	MACDBuy     bool
	BBOversold  bool
	// ChangePct is carried for display and the alert rule; it does not
	// affect the label precedence.
	ChangePct float64
}

// SignalsOf extracts the classifier input from a snapshot.
func SignalsOf(ind *model.IndicatorSnapshot) Signals {
	return Signals{
		GoldenCross: ind.GoldenCross,
		MACDBuy:     ind.MACDBuy,
		BBOversold:  ind.BBOversold,
		ChangePct:   ind.ChangePct,
	}
}

// Classify maps the signals to a composite label. A golden cross confirmed by
// a MACD buy cross or a lower-band touch is the strongest buy.
func Classify(s Signals) model.CompositeLabel {
	switch {
	case s.GoldenCross && (s.MACDBuy || s.BBOversold):
		return model.LabelStrongestBuy
	case s.GoldenCross:
		return model.LabelGoldenCross
	case s.MACDBuy:
		return model.LabelMACDBuy
	case s.BBOversold:
		return model.LabelOversold
	default:
		return model.LabelNone
	}
}

// Evaluate builds the full record verdict for one ticker.
func Evaluate(ind *model.IndicatorSnapshot, company model.Company) (model.CompositeLabel, model.FundamentalSnapshot) {
	return Classify(SignalsOf(ind)), Fundamentals(company)
}
