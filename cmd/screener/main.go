package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"SignalScanner/internal/backtest"
	"SignalScanner/internal/collector"
	"SignalScanner/internal/config"
	"SignalScanner/internal/logging"
	"SignalScanner/internal/metrics"
	"SignalScanner/internal/notifier"
	"SignalScanner/internal/scanner"
	"SignalScanner/internal/tickers"
)

// env holds the dependencies shared by all commands.
type env struct {
	cfg      *config.Config
	registry *prometheus.Registry
	metrics  *metrics.Scan
	col      *collector.Collector
	scanner  *scanner.Scanner
	backtest *backtest.Runner
}

func (e *env) tickers() ([]string, error) {
	return tickers.Load(e.cfg.TickersFile)
}

func (e *env) sender() (notifier.Sender, error) {
	channel, err := e.cfg.AlertChannel()
	if err != nil {
		return nil, err
	}
	if channel == config.ChannelLINE {
		return notifier.NewLINENotifier(e.cfg.LINE.AccessToken, e.cfg.LINE.UserID, e.cfg.Proxy), nil
	}
	return e.telegram(), nil
}

func (e *env) telegram() *notifier.TelegramNotifier {
	return notifier.NewTelegramNotifier(e.cfg.Telegram.BotToken, e.cfg.Telegram.ChatID, e.cfg.Proxy)
}

func setup(c *cli.Context, e *env) error {
	if err := config.LoadEnvFile(c.String("env-file")); err != nil {
		return err
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("tickers") {
		cfg.TickersFile = c.String("tickers")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return err
	}

	lookback, err := cfg.Lookback()
	if err != nil {
		return err
	}
	btLookback, err := cfg.BacktestLookback()
	if err != nil {
		return err
	}

	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Infof("data source: %s", fetcher.Name())

	e.cfg = cfg
	e.registry = prometheus.NewRegistry()
	e.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e.metrics = metrics.NewScan(e.registry)
	e.col = collector.NewCollector(fetcher, lookback, cfg.DataSource.RequestsPerSecond)
	e.scanner = scanner.New(e.col, e.metrics)
	e.backtest = &backtest.Runner{Source: e.col, Lookback: btLookback, Horizon: backtest.DefaultHorizon}
	return nil
}

func main() {
	e := &env{}
	app := &cli.App{
		Name:  "screener",
		Usage: "screen equity tickers for technical and fundamental buy signals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultPath, EnvVars: []string{"CONFIG_PATH"}, Usage: "YAML config file"},
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before the config"},
			&cli.StringFlag{Name: "tickers", Aliases: []string{"t"}, Usage: "ticker list file (overrides config)"},
			&cli.StringFlag{Name: "log-level", Usage: "trace, debug, info, warn, error"},
		},
		Before: func(c *cli.Context) error { return setup(c, e) },
		Commands: []*cli.Command{
			scanCommand(e),
			exportCommand(e),
			backtestCommand(e),
			alertCommand(e),
			daemonCommand(e),
			serveCommand(e),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
