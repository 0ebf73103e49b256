package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"SignalScanner/internal/model"
	"SignalScanner/internal/scanner"
)

// AlertHeader opens every alert message.
const AlertHeader = "🔔 本日の自動お宝銘柄通知 🔔"

// NoMatchesText is the reply for an empty scan.
const NoMatchesText = "条件に合う銘柄はありませんでした。"

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

// FormatAlert builds the alert message for the given hits. It returns "" when
// there is nothing to send.
func FormatAlert(hits []model.ScanRecord) string {
	if len(hits) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(AlertHeader + "\n")
	for _, r := range hits {
		fmt.Fprintf(&b, "\n【%s (%s)】\n", r.Name, r.Symbol)
		fmt.Fprintf(&b, "価格: %s円\n", fixed(r.Indicators.Price, 1))
		fmt.Fprintf(&b, "騰落率: %s%%\n", fixed(r.Indicators.ChangePct, 1))
		if r.Indicators.GoldenCross {
			b.WriteString("★GC(ゴールデンクロス)発生！\n")
		}
	}
	return b.String()
}

// FormatScan renders at most limit records of a scan result. limit <= 0 means all.
func FormatScan(res *scanner.Result, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 スキャン結果 [%s] | %s\n", res.Filter.Mode, time.Now().Format("2006-01-02 15:04"))
	if res.NoMatches {
		b.WriteString("\n" + NoMatchesText)
		return b.String()
	}

	records := res.Records
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for _, r := range records {
		ind := r.Indicators
		b.WriteString("\n")
		if label := r.Label.String(); label != "" {
			fmt.Fprintf(&b, "[%s] ", label)
		}
		fmt.Fprintf(&b, "%s (%s)\n", r.Name, r.Symbol)
		fmt.Fprintf(&b, "  価格 %s | 騰落率 %s%% | 出来高 %s倍\n",
			fixed(ind.Price, 1), fixed(ind.ChangePct, 2), fixed(ind.VolumeRatio, 2))
		fmt.Fprintf(&b, "  RSI %s | 乖離 %s%% | 安全性 %d点 | ニュース %s\n",
			fixed(ind.RSI, 1), fixed(ind.DeviationPct, 2), r.Fundamentals.SafetyScore, r.Sentiment.Polarity)
	}
	if rest := len(res.Records) - len(records); rest > 0 {
		fmt.Fprintf(&b, "\n…他 %d 銘柄\n", rest)
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(&b, "\n(スキップ %d 銘柄)\n", n)
	}
	return b.String()
}

// FormatBacktest renders a backtest result.
func FormatBacktest(res *model.BacktestResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧪 GCバックテスト | %s (%d日後)\n\n", res.Symbol, res.Horizon)
	fmt.Fprintf(&b, "シグナル数: %d\n", res.SignalCount)
	if res.Stats == nil {
		b.WriteString("勝率: - | 平均リターン: -\n")
		return b.String()
	}
	fmt.Fprintf(&b, "勝率: %s%% | 平均リターン: %s%%\n",
		fixed(res.Stats.HitRate*100, 1), fixed(res.Stats.MeanReturn, 2))
	for _, s := range res.Signals {
		fmt.Fprintf(&b, "  %s  %s → %s (%s%%)\n", s.Date.Format("2006-01-02"),
			fixed(s.Close, 1), fixed(s.ForwardClose, 1), fixed(s.ForwardReturnPct, 2))
	}
	return b.String()
}
