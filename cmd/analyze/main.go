// Package main is a one-shot CLI for holder distribution analysis: it
// runs a single analysis against the configured RPC endpoint, prints the
// results as JSON, and can export the selected addresses to a file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"solana-holder-sampler/internal/analyzer"
	"solana-holder-sampler/internal/config"
	"solana-holder-sampler/internal/domain"
	"solana-holder-sampler/internal/errs"
	"solana-holder-sampler/internal/holders"
	"solana-holder-sampler/internal/logger"
	"solana-holder-sampler/internal/solana"
)

func main() {
	_ = godotenv.Load()

	mint := flag.String("mint", "", "Token mint address to analyze")
	minHoldings := flag.Float64("min-holdings", 0, "Minimum token balance to be eligible")
	numHolders := flag.Int("holders", 10, "Number of holders to select")
	excludeTop := flag.Float64("exclude-top", 0, "Percentage of top holders to exclude (0-99.99)")
	addressesOut := flag.String("addresses-out", "", "Write selected addresses to this file, one per line")
	timeout := flag.Duration("timeout", 0, "Overall analysis timeout (0 uses ANALYZE_TIMEOUT)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if *timeout == 0 {
		*timeout = cfg.AnalyzeTimeout
	}

	log := logger.New("analyze", cfg.LogLevel)
	defer log.Sync()

	rpc := solana.NewHTTPClient(cfg.Endpoint(), solana.WithTimeout(cfg.RPCTimeout))

	an := analyzer.New(analyzer.Options{
		Fetcher:   holders.NewFetcher(rpc, log, holders.WithPageInterval(cfg.PageInterval)),
		Resolver:  holders.NewResolver(rpc, log),
		Processor: holders.NewProcessor(),
		Timeout:   *timeout,
		Logger:    log,
	})

	params := domain.AnalysisParams{
		MintAddress:       *mint,
		MinHoldings:       *minHoldings,
		NumberOfHolders:   *numHolders,
		ExcludeTopPercent: *excludeTop,
	}

	results, elapsed, err := an.Analyze(context.Background(), params)
	if err != nil {
		if tagged := errs.AsError(err); tagged != nil {
			fmt.Fprintf(os.Stderr, "analysis failed: %s\n", tagged.Message)
		} else {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		}
		os.Exit(1)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode results: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	fmt.Fprintf(os.Stderr, "completed in %.2fs\n", elapsed.Seconds())

	if *addressesOut != "" {
		if err := writeAddresses(*addressesOut, results.SelectedHolders); err != nil {
			log.Error("write addresses", zap.Error(err))
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %d addresses to %s\n", len(results.SelectedHolders), *addressesOut)
	}
}

// writeAddresses writes the selected holder addresses one per line.
func writeAddresses(path string, selected []domain.TokenHolder) error {
	var sb strings.Builder
	for _, h := range selected {
		sb.WriteString(h.Address)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
