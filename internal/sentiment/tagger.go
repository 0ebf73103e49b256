// Package sentiment tags headline polarity with fixed keyword lists.
package sentiment

import (
	"strings"

	"SignalScanner/internal/model"
)

// MaxHeadlines is the number of most recent headlines inspected.
const MaxHeadlines = 5

// Keywords are matched against lower-cased headlines. No keyword is a
// substring of another keyword in either list.
var (
	PositiveKeywords = []string{
		"上方修正", "増益", "最高益", "増配", "自社株買い", "好調", "続伸", "急伸", "黒字", "提携", "受注",
		"upgrade", "beats", "record high", "raises guidance", "buyback", "surge", "rally",
	}
	NegativeKeywords = []string{
		"下方修正", "減益", "減配", "赤字", "不振", "続落", "急落", "懸念", "不祥事", "リコール",
		"downgrade", "misses", "lawsuit", "cuts guidance", "plunge", "recall", "probe",
	}
)

// Titles returns the non-empty titles of the headlines, preserving order.
func Titles(items []model.Headline) []string {
	titles := make([]string, 0, len(items))
	for _, h := range items {
		if t := strings.TrimSpace(h.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// Tag scores the headlines, newest first. Only the first MaxHeadlines are
// read. Every occurrence of a keyword counts, so a headline repeating a
// keyword scores it twice. No headlines yields a neutral verdict marked NoData.
func Tag(headlines []string) model.SentimentVerdict {
	if len(headlines) == 0 {
		return model.SentimentVerdict{Polarity: model.PolarityNeutral, NoData: true}
	}
	if len(headlines) > MaxHeadlines {
		headlines = headlines[:MaxHeadlines]
	}

	var v model.SentimentVerdict
	seen := make(map[string]bool)
	for _, h := range headlines {
		text := strings.ToLower(h)
		v.Score += count(text, PositiveKeywords, seen, &v.Matched)
		v.Score -= count(text, NegativeKeywords, seen, &v.Matched)
	}

	switch {
	case v.Score > 0:
		v.Polarity = model.PolarityPositive
	case v.Score < 0:
		v.Polarity = model.PolarityNegative
	default:
		v.Polarity = model.PolarityNeutral
	}
	return v
}

func count(text string, keywords []string, seen map[string]bool, matched *[]string) int {
	hits := 0
	for _, kw := range keywords {
		n := strings.Count(text, kw)
		if n == 0 {
			continue
		}
		hits += n
		if !seen[kw] {
			seen[kw] = true
			*matched = append(*matched, kw)
		}
	}
	return hits
}
