// Package scheduler runs the unattended alert scan and answers chat commands.
package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"SignalScanner/internal/metrics"
	"SignalScanner/internal/model"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/scanner"
)

// Backtester runs a backtest for one symbol.
type Backtester interface {
	Backtest(ctx context.Context, symbol string) (*model.BacktestResult, error)
}

// TickerSource returns the current ticker list. It is called once per run.
type TickerSource func() ([]string, error)

// Scheduler manages the cron alert job and chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Scanner    *scanner.Scanner
	Backtester Backtester
	Notifier   notifier.Sender
	Tickers    TickerSource
	Rule       scanner.AlertRule
	Momentum   scanner.FilterConfig
	Dip        scanner.FilterConfig
	Metrics    *metrics.Scan
	Ctx        context.Context
	// ReplyLimit caps the records listed in a command reply.
	ReplyLimit int
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, bt Backtester, sender notifier.Sender, tickers TickerSource) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		Scanner:    sc,
		Backtester: bt,
		Notifier:   sender,
		Tickers:    tickers,
		Rule:       scanner.DefaultAlertRule(),
		Momentum:   scanner.DefaultFilterConfig(scanner.ModeMomentum),
		Dip:        scanner.DefaultFilterConfig(scanner.ModeDip),
		Ctx:        ctx,
		ReplyLimit: 10,
	}
}

// Register adds the alert scan on the given six-field cron spec.
func (s *Scheduler) Register(alertCron string) error {
	if _, err := s.Cron.AddFunc(alertCron, s.alertTask); err != nil {
		return fmt.Errorf("register alert task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunAlertNow executes the alert scan immediately.
func (s *Scheduler) RunAlertNow() error {
	return s.RunAlert(s.Ctx)
}

func (s *Scheduler) alertTask() {
	if err := s.RunAlert(s.Ctx); err != nil {
		log.Errorf("alert task: %v", err)
	}
}

// RunAlert scans the ticker list and sends one message for the records
// matching the alert rule. Nothing is sent when there are no hits.
func (s *Scheduler) RunAlert(ctx context.Context) error {
	log.Info("running alert scan")
	symbols, err := s.Tickers()
	if err != nil {
		return err
	}
	report, err := s.Scanner.Run(ctx, symbols)
	if err != nil {
		return fmt.Errorf("alert scan: %w", err)
	}

	hits := s.Rule.Hits(report.Records)
	if len(hits) == 0 {
		log.WithField("run_id", report.RunID).Info(notifier.NoMatchesText)
		return nil
	}
	if err := s.Notifier.Send(ctx, notifier.FormatAlert(hits)); err != nil {
		s.Metrics.Alert(false)
		return fmt.Errorf("send alert: %w", err)
	}
	s.Metrics.Alert(true)
	log.WithField("run_id", report.RunID).Infof("alert sent: %d hits", len(hits))
	return nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "/scan", "スキャン":
		return s.scanReply(ctx, s.Momentum)
	case "/dip", "押し目":
		return s.scanReply(ctx, s.Dip)
	case "/backtest", "バックテスト":
		if len(fields) < 2 {
			return "使い方: /backtest <銘柄コード>"
		}
		res, err := s.Backtester.Backtest(ctx, strings.ToUpper(fields[1]))
		if err != nil {
			return fmt.Sprintf("❌ バックテスト失敗: %v", err)
		}
		return notifier.FormatBacktest(res)
	default:
		return "利用可能なコマンド:\n• /scan 急騰スキャン\n• /dip 押し目スキャン\n• /backtest <銘柄コード>"
	}
}

func (s *Scheduler) scanReply(ctx context.Context, cfg scanner.FilterConfig) string {
	symbols, err := s.Tickers()
	if err != nil {
		return fmt.Sprintf("❌ スキャン失敗: %v", err)
	}
	res, err := s.Scanner.Scan(ctx, symbols, cfg, false)
	if err != nil {
		return fmt.Sprintf("❌ スキャン失敗: %v", err)
	}
	return notifier.FormatScan(res, s.ReplyLimit)
}
