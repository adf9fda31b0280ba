package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/bighogz/stockdiag/internal/brapi"
	"github.com/bighogz/stockdiag/internal/config"
	"github.com/bighogz/stockdiag/internal/dashboard"
	"github.com/bighogz/stockdiag/internal/httpclient"
	"github.com/bighogz/stockdiag/internal/logging"
	"github.com/bighogz/stockdiag/internal/models"
	"github.com/bighogz/stockdiag/internal/yahoo"
	"github.com/dustin/go-humanize"
)

func main() {
	symbol := flag.String("symbol", "", "Ticker to diagnose, e.g. PETR4")
	period := flag.String("period", dashboard.DefaultPeriod, "Period code: 1d, 5d, 1mo, 3mo")
	overview := flag.Bool("overview", false, "Print the market overview instead of a diagnosis")
	csvPath := flag.String("csv", "", "Write the price series to CSV")
	provider := flag.String("provider", "", "Quote provider override: brapi or yahoo")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *provider != "" {
		cfg.Provider = *provider
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	logging.Setup(cfg.LogLevel, true)

	hc := httpclient.New(cfg.RequestTimeout, cfg.MaxRetries)
	var gw dashboard.Gateway = brapi.New(cfg.BrapiToken, cfg.BrapiBaseURL, hc)
	if cfg.Provider == config.ProviderYahoo {
		gw = yahoo.New(cfg.YahooBaseURL, hc)
	}
	svc := dashboard.New(gw, cfg.IndexSymbol)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.RequestTimeout)
	defer cancel()

	if *overview {
		ov, err := svc.Overview(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load market overview: %v\n", err)
			os.Exit(1)
		}
		printOverview(os.Stdout, ov)
		return
	}

	if *symbol == "" {
		fmt.Fprintln(os.Stderr, "-symbol is required (or use -overview)")
		flag.Usage()
		os.Exit(2)
	}
	rep, err := svc.Diagnose(ctx, *symbol, *period)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Diagnosis failed: %v\n", err)
		os.Exit(1)
	}
	printReport(os.Stdout, rep)

	if *csvPath != "" {
		f, err := os.Create(*csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not create CSV: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := writeSeries(f, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write CSV: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %s.\n", *csvPath)
	}
}

func printReport(w io.Writer, rep *models.Report) {
	name := rep.LongName
	if name == "" {
		name = rep.ShortName
	}
	fmt.Fprintf(w, "%s  %s\n", rep.Symbol, name)
	fmt.Fprintf(w, "Price %s (%+.2f%%)  period=%s  points=%d\n",
		humanize.CommafWithDigits(rep.CurrentPrice, 2), rep.ChangePercent, rep.Period, len(rep.Prices))
	fmt.Fprintf(w, "return=%+.2f%%  volatility=%.4f (%s)  sma=%.2f  trend=%s\n\n",
		rep.Return*100, rep.VolatilityValue, rep.Volatility, rep.MovingAverage, rep.Trend)
	fmt.Fprintln(w, rep.Diagnosis)
}

func printOverview(w io.Writer, ov *models.Overview) {
	fmt.Fprintf(w, "Market overview (%s)\n", ov.UpdatedAt.Format(time.RFC3339))
	for _, idx := range ov.Indices {
		fmt.Fprintf(w, "  %s  %s  %+.2f%%\n", idx.Name, humanize.CommafWithDigits(idx.Price, 2), idx.ChangePercent)
	}
	section := func(title string, stocks []models.Stock) {
		fmt.Fprintf(w, "\n%s:\n", title)
		if len(stocks) == 0 {
			fmt.Fprintln(w, "  (No data)")
			return
		}
		for _, s := range stocks {
			chg := "n/a"
			if s.Change != nil {
				chg = fmt.Sprintf("%+.2f%%", *s.Change)
			}
			fmt.Fprintf(w, "  %-7s %10s  %8s  vol=%s\n", s.Symbol, humanize.CommafWithDigits(s.Price, 2), chg, humanize.Comma(int64(s.Volume)))
		}
	}
	section("Top gainers", ov.TopGainers)
	section("Top losers", ov.TopLosers)
	section("Most traded", ov.MostTraded)
	fmt.Fprintf(w, "\nTotal volume (most traded): %s\n", humanize.Comma(int64(ov.TotalVolume)))
}

func writeSeries(w io.Writer, rep *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "close"}); err != nil {
		return err
	}
	for i, p := range rep.Prices {
		date := ""
		if i < len(rep.Timestamps) {
			date = time.Unix(rep.Timestamps[i], 0).UTC().Format("2006-01-02T15:04:05Z")
		}
		if err := cw.Write([]string{date, strconv.FormatFloat(p, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
