package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tapewatch/tapewatch/internal/alert"
	"github.com/tapewatch/tapewatch/internal/analytics"
	"github.com/tapewatch/tapewatch/internal/app"
	"github.com/tapewatch/tapewatch/internal/config"
	"github.com/tapewatch/tapewatch/internal/feed"
	"github.com/tapewatch/tapewatch/internal/greeks"
	"github.com/tapewatch/tapewatch/internal/httpapi"
	"github.com/tapewatch/tapewatch/internal/metrics"
	"github.com/tapewatch/tapewatch/internal/report"
	"github.com/tapewatch/tapewatch/internal/spread"
)

const (
	appName = "tapewatch"
	version = "v1.0.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Real-time market liquidity and anomaly monitor",
		Version: version,
		Long: `tapewatch streams live trades and order book depth for a single symbol,
maintains a rolling analytics window, and flags anomalous prints as they
arrive. Liquidity, risk, and market impact metrics are recomputed on demand
and exposed over HTTP, Prometheus, and a websocket stream.`,
	}

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Stream live market data and monitor for anomalies",
		Long:  "Connects to the venue websocket feed, ingests every print through the analytics engine, and publishes anomaly alerts and periodic metric snapshots",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("config", "", "Path to YAML config file")
	monitorCmd.Flags().String("symbol", "", "Override the configured symbol")

	greeksCmd := &cobra.Command{
		Use:   "greeks",
		Short: "Price an option and print its greeks",
		Long:  "Black-Scholes pricing for a European option with delta, gamma, theta, vega, and rho",
		RunE:  runGreeks,
	}
	greeksCmd.Flags().Float64("spot", 0, "Spot price (required)")
	greeksCmd.Flags().Float64("strike", 0, "Strike price (required)")
	greeksCmd.Flags().Float64("expiry", 0, "Time to expiry in years (required)")
	greeksCmd.Flags().Float64("rate", 0.05, "Risk-free rate")
	greeksCmd.Flags().Float64("vol", 0, "Implied volatility (required)")
	greeksCmd.Flags().Bool("put", false, "Price a put instead of a call")

	spreadCmd := &cobra.Command{
		Use:   "spread",
		Short: "Compare spot and perpetual futures quotes for one symbol",
		Long:  "Polls the spot and USD-M perpetual book tickers, reports bid/ask divergence, and calls the profitable direction when the books cross",
		RunE:  runSpread,
	}
	spreadCmd.Flags().String("symbol", "BTCUSDT", "Symbol traded on both markets")
	spreadCmd.Flags().Float64("min-diff", 1.0, "Minimum bid or ask difference worth reporting")
	spreadCmd.Flags().Float64("profit-threshold", 0.5, "Minimum gross edge before calling a direction")
	spreadCmd.Flags().Int("interval-secs", 2, "Seconds between quote polls")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one empty-state snapshot and exit",
		Long:  "Builds an analyzer from the config and prints its initial snapshot; useful for validating config files",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(greeksCmd)
	rootCmd.AddCommand(spreadCmd)
	rootCmd.AddCommand(snapshotCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if symbol, _ := cmd.Flags().GetString("symbol"); symbol != "" {
		cfg.Analyzer.Symbol = symbol
	}
	if cfg.Feed.UseTestnet {
		binance.UseTestnet = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := analytics.New(cfg.Analyzer)
	registry := metrics.NewRegistry()

	var publisher alert.Publisher = alert.NopPublisher{}
	if cfg.Alerts.RedisAddr != "" {
		rp, err := alert.NewRedisPublisher(ctx, cfg.Alerts.RedisAddr, cfg.Alerts.RedisDB, cfg.Alerts.Channel, log.Logger)
		if err != nil {
			return fmt.Errorf("alert publisher setup failed: %w", err)
		}
		defer rp.Close()
		publisher = rp
	}

	monitor := app.NewMonitor(cfg.Monitor, analyzer, publisher, registry, log.Logger)

	if cfg.HTTP.Enabled {
		server := httpapi.NewServer(cfg.HTTP, analyzer, registry.Handler(), log.Logger)
		go func() {
			if err := server.Start(); err != nil {
				log.Error().Err(err).Msg("http server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	binanceFeed := feed.NewBinanceFeed(cfg.Analyzer.Symbol, cfg.Feed.BookDepth, cfg.Feed.GetReconnectEvery(), log.Logger)

	log.Info().
		Str("symbol", cfg.Analyzer.Symbol).
		Str("venue", cfg.Feed.Venue).
		Msg("tapewatch monitor starting")

	if err := monitor.Run(ctx, binanceFeed); err != nil && err != context.Canceled {
		return err
	}
	log.Info().Msg("monitor stopped")
	return nil
}

func runGreeks(cmd *cobra.Command, args []string) error {
	spot, _ := cmd.Flags().GetFloat64("spot")
	strike, _ := cmd.Flags().GetFloat64("strike")
	expiry, _ := cmd.Flags().GetFloat64("expiry")
	rate, _ := cmd.Flags().GetFloat64("rate")
	vol, _ := cmd.Flags().GetFloat64("vol")
	put, _ := cmd.Flags().GetBool("put")

	g, err := greeks.Compute(greeks.Option{
		Spot:         spot,
		Strike:       strike,
		TimeToExpiry: expiry,
		RiskFreeRate: rate,
		Volatility:   vol,
		IsCall:       !put,
	})
	if err != nil {
		return err
	}

	kind := "call"
	if put {
		kind = "put"
	}
	fmt.Printf("%s S=%.2f K=%.2f T=%.4f r=%.4f vol=%.4f\n", kind, spot, strike, expiry, rate, vol)
	fmt.Printf("  price:     %10.4f\n", g.Price)
	fmt.Printf("  intrinsic: %10.4f\n", g.IntrinsicValue)
	fmt.Printf("  delta:     %10.4f\n", g.Delta)
	fmt.Printf("  gamma:     %10.4f\n", g.Gamma)
	fmt.Printf("  theta:     %10.4f\n", g.Theta)
	fmt.Printf("  vega:      %10.4f\n", g.Vega)
	fmt.Printf("  rho:       %10.4f\n", g.Rho)
	return nil
}

func runSpread(cmd *cobra.Command, args []string) error {
	symbol, _ := cmd.Flags().GetString("symbol")
	minDiff, _ := cmd.Flags().GetFloat64("min-diff")
	profitThreshold, _ := cmd.Flags().GetFloat64("profit-threshold")
	intervalSecs, _ := cmd.Flags().GetInt("interval-secs")
	if intervalSecs <= 0 {
		intervalSecs = 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spot := binance.NewClient("", "")
	perp := futures.NewClient("", "")
	monitor := spread.NewMonitor("binance-spot", "binance-perp", minDiff, profitThreshold)

	log.Info().
		Str("symbol", symbol).
		Float64("min_diff", minDiff).
		Float64("profit_threshold", profitThreshold).
		Msg("spread monitor starting")

	ticker := time.NewTicker(time.Duration(intervalSecs) * time.Second)
	defer ticker.Stop()
	for {
		pollSpread(ctx, monitor, spot, perp, symbol)
		select {
		case <-ctx.Done():
			log.Info().Msg("spread monitor stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// pollSpread fetches one quote per market and reports the fresh comparison.
// Poll errors are logged and retried on the next tick.
func pollSpread(ctx context.Context, m *spread.Monitor, spot *binance.Client, perp *futures.Client, symbol string) {
	now := time.Now()

	spotTickers, err := spot.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil || len(spotTickers) == 0 {
		log.Warn().Err(err).Msg("spot quote fetch failed")
		return
	}
	quoteA, err := spread.ParseQuote(spotTickers[0].BidPrice, spotTickers[0].BidQuantity, spotTickers[0].AskPrice, spotTickers[0].AskQuantity, now)
	if err != nil {
		log.Warn().Err(err).Msg("spot quote unusable")
		return
	}
	m.UpdateA(quoteA)

	perpTickers, err := perp.NewListBookTickersService().Symbol(symbol).Do(ctx)
	if err != nil || len(perpTickers) == 0 {
		log.Warn().Err(err).Msg("perp quote fetch failed")
		return
	}
	quoteB, err := spread.ParseQuote(perpTickers[0].BidPrice, perpTickers[0].BidQuantity, perpTickers[0].AskPrice, perpTickers[0].AskQuantity, now)
	if err != nil {
		log.Warn().Err(err).Msg("perp quote unusable")
		return
	}

	c, ok := m.UpdateB(quoteB)
	if !ok {
		return
	}
	ev := log.Debug()
	if m.Significant(c) {
		ev = log.Info()
	}
	ev.
		Float64("spot_bid", c.QuoteA.Bid).
		Float64("spot_ask", c.QuoteA.Ask).
		Float64("perp_bid", c.QuoteB.Bid).
		Float64("perp_ask", c.QuoteB.Ask).
		Float64("bid_diff", c.BidDiff).
		Float64("ask_diff", c.AskDiff).
		Str("direction", c.BestDirection).
		Float64("potential_profit", c.PotentialProfit).
		Msg("quote comparison")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out, err := report.JSON(analytics.New(cfg.Analyzer).Snapshot())
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
