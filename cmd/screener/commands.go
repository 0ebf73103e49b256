package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"SignalScanner/internal/export"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/scheduler"
	"SignalScanner/internal/server"
	"SignalScanner/internal/tickers"
)

func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(scanner.ModeMomentum), Usage: "momentum or dip"},
		&cli.Float64Flag{Name: "min-change", Usage: "minimum change % (momentum)"},
		&cli.Float64Flag{Name: "min-volume", Usage: "minimum volume ratio (momentum)"},
		&cli.Float64Flag{Name: "max-rsi", Usage: "maximum RSI (dip)"},
		&cli.Float64Flag{Name: "min-deviation", Usage: "maximum MA25 deviation % (dip)"},
		&cli.StringFlag{Name: "dip-policy", Usage: "strict or loose"},
		&cli.BoolFlag{Name: "fundamental", Usage: "also require safety score and dividend"},
		&cli.IntFlag{Name: "min-safety", Usage: "minimum safety score"},
		&cli.Float64Flag{Name: "min-dividend", Usage: "minimum dividend yield %"},
		&cli.BoolFlag{Name: "group", Usage: "group matches by sector"},
	}
}

// filterFrom starts from the configured filter of the selected mode and
// applies the flags that were set.
func filterFrom(c *cli.Context, e *env) (scanner.FilterConfig, error) {
	var cfg scanner.FilterConfig
	switch scanner.Mode(c.String("mode")) {
	case scanner.ModeMomentum:
		cfg = e.cfg.Filters.Momentum
	case scanner.ModeDip:
		cfg = e.cfg.Filters.Dip
	default:
		return cfg, fmt.Errorf("unknown mode %q", c.String("mode"))
	}
	if c.IsSet("min-change") {
		cfg.MinChange = c.Float64("min-change")
	}
	if c.IsSet("min-volume") {
		cfg.MinVolume = c.Float64("min-volume")
	}
	if c.IsSet("max-rsi") {
		cfg.MaxRSI = c.Float64("max-rsi")
	}
	if c.IsSet("min-deviation") {
		cfg.MinDeviation = c.Float64("min-deviation")
	}
	if c.IsSet("dip-policy") {
		cfg.DipPolicy = scanner.DipPolicy(c.String("dip-policy"))
	}
	if c.IsSet("fundamental") {
		cfg.FundamentalFilter = c.Bool("fundamental")
	}
	if c.IsSet("min-safety") {
		cfg.MinSafety = c.Int("min-safety")
	}
	if c.IsSet("min-dividend") {
		cfg.MinDividend = c.Float64("min-dividend")
	}
	return cfg, cfg.Validate()
}

// runScan loads the ticker list and scans it. A missing or empty list is
// reported and yields a nil result without error.
func runScan(c *cli.Context, e *env) (*scanner.Result, error) {
	cfg, err := filterFrom(c, e)
	if err != nil {
		return nil, err
	}
	symbols, err := e.tickers()
	if errors.Is(err, tickers.ErrNoTickers) {
		log.Warnf("no tickers: %v", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e.scanner.Scan(c.Context, symbols, cfg, c.Bool("group"))
}

func scanCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "scan",
		Usage: "scan the ticker list and print the matches",
		Flags: append(filterFlags(), &cli.BoolFlag{Name: "json", Usage: "print JSON"}),
		Action: func(c *cli.Context) error {
			res, err := runScan(c, e)
			if err != nil || res == nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(os.Stdout, res)
			}
			return printTable(os.Stdout, res)
		},
	}
}

func exportCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "scan the ticker list and write the matches to an XLSX workbook",
		Flags: append(filterFlags(), &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "scan.xlsx", Usage: "output file"}),
		Action: func(c *cli.Context) error {
			res, err := runScan(c, e)
			if err != nil || res == nil {
				return err
			}
			f, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			if err := export.WriteXLSX(f, res); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close output: %w", err)
			}
			log.Infof("wrote %d records to %s", len(res.Records), c.String("out"))
			return nil
		},
	}
}

func backtestCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "backtest",
		Usage:     "replay MA5/MA25 golden crosses for one symbol",
		ArgsUsage: "SYMBOL",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "horizon", Value: 3, Usage: "forward window in bars"},
			&cli.BoolFlag{Name: "json", Usage: "print JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: screener backtest SYMBOL", 2)
			}
			e.backtest.Horizon = c.Int("horizon")
			res, err := e.backtest.Backtest(c.Context, strings.ToUpper(c.Args().First()))
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(os.Stdout, res)
			}
			_, err = fmt.Fprint(os.Stdout, notifier.FormatBacktest(res))
			return err
		},
	}
}

func newScheduler(c *cli.Context, e *env, sender notifier.Sender) *scheduler.Scheduler {
	s := scheduler.NewScheduler(c.Context, e.scanner, e.backtest, sender, e.tickers)
	s.Rule = e.cfg.AlertRule()
	s.Momentum = e.cfg.Filters.Momentum
	s.Dip = e.cfg.Filters.Dip
	s.Metrics = e.metrics
	return s
}

func alertCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "alert",
		Usage: "run the alert scan once and push the hits",
		Action: func(c *cli.Context) error {
			sender, err := e.sender()
			if err != nil {
				return err
			}
			err = newScheduler(c, e, sender).RunAlert(c.Context)
			if errors.Is(err, tickers.ErrNoTickers) {
				log.Warnf("no tickers: %v", err)
				return nil
			}
			return err
		},
	}
}

func daemonCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "daemon",
		Usage: "run the alert scan on the configured cron schedule",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "run-now", EnvVars: []string{"RUN_ON_START"}, Usage: "also run the alert scan at startup"},
			&cli.BoolFlag{Name: "serve", Usage: "also serve the HTTP API"},
		},
		Action: func(c *cli.Context) error {
			sender, err := e.sender()
			if err != nil {
				return err
			}
			sched := newScheduler(c, e, sender)
			if err := sched.Register(e.cfg.Alert.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn, ok := sender.(*notifier.TelegramNotifier); ok {
				go tn.StartPolling(c.Context, sched.HandleCommand)
				log.Info("telegram polling started")
			}
			if c.Bool("run-now") {
				log.Info("running alert scan at startup")
				go func() {
					if err := sched.RunAlertNow(); err != nil {
						log.Errorf("startup alert: %v", err)
					}
				}()
			}
			if c.Bool("serve") {
				return newServer(e).ListenAndServe(c.Context, e.cfg.Server.Addr)
			}

			log.Info("screener daemon is running. Press Ctrl+C to stop.")
			<-c.Context.Done()
			log.Info("shutdown signal received, stopping...")
			return nil
		},
	}
}

func newServer(e *env) *server.Server {
	return &server.Server{
		Scanner:        e.scanner,
		Backtester:     e.backtest,
		Tickers:        e.tickers,
		Momentum:       e.cfg.Filters.Momentum,
		Dip:            e.cfg.Filters.Dip,
		Gatherer:       e.registry,
		RequestTimeout: 5 * time.Minute,
	}
}

func serveCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the JSON dashboard API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			addr := e.cfg.Server.Addr
			if c.IsSet("addr") {
				addr = c.String("addr")
			}
			return newServer(e).ListenAndServe(c.Context, addr)
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, res *scanner.Result) error {
	if res.NoMatches {
		_, err := fmt.Fprintln(w, notifier.NoMatchesText)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeGroups := func(groups []scanner.Group) {
		for _, g := range groups {
			if g.Sector != "" {
				fmt.Fprintf(tw, "\n[%s]\n", g.Sector)
			}
			fmt.Fprintln(tw, "LABEL\tSYMBOL\tNAME\tPRICE\tCHG%\tVOL\tRSI\tDEV%\tSAFETY\tNEWS")
			for _, r := range g.Records {
				ind := r.Indicators
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%+.2f\t%.2f\t%.1f\t%+.2f\t%d\t%s\n",
					r.Label, r.Symbol, r.Name, ind.Price, ind.ChangePct, ind.VolumeRatio,
					ind.RSI, ind.DeviationPct, r.Fundamentals.SafetyScore, r.Sentiment.Polarity)
			}
		}
	}
	if len(res.Groups) > 0 {
		writeGroups(res.Groups)
	} else {
		writeGroups([]scanner.Group{{Records: res.Records}})
	}
	if n := len(res.Skipped); n > 0 {
		fmt.Fprintf(tw, "\n%d tickers skipped\n", n)
	}
	return tw.Flush()
}
