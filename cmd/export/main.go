package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"FinCast/internal/di"
	"FinCast/internal/domain/models"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"

	"github.com/creasty/defaults"
)

func main() {
	configPath := flag.String("config", "", "config file path (defaults when empty)")
	symbols := flag.String("symbols", "", "comma separated symbols, e.g. TCS,INFY")
	days := flag.Int("days", 30, "days ahead to forecast (1-365)")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	mode := flag.String("mode", "", "single or comparison; picked from the symbol count when empty")
	out := flag.String("out", "", "output directory (defaults to export.dir)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	// stdout is reserved for the written path
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}

	req, err := buildRequest(*symbols, *days, *format, *mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	dir := *out
	if dir == "" {
		dir = cfg.Export.Dir
	}

	exports, cleanup, err := di.InitializeExporter(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer cleanup()

	// os.Exit skips deferred calls, so failures release resources first
	fail := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
		cleanup()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file, err := exports.Export(ctx, req)
	if err != nil {
		msg := models.UserMessage(err)
		if errors.Is(err, models.ErrInvalidInput) {
			msg = err.Error()
		}
		fail("export failed: %s", msg)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fail("create output dir: %v", err)
	}
	path := filepath.Join(dir, file.FileName)
	if err := os.WriteFile(path, file.Body, 0o644); err != nil {
		fail("write export: %v", err)
	}
	fmt.Println(path)
}

// buildRequest applies defaults before the flag values so an explicit
// -days 0 is rejected rather than replaced.
func buildRequest(symbols string, days int, format, mode string) (models.ExportRequest, error) {
	var req models.ExportRequest
	if err := defaults.Set(&req); err != nil {
		return req, err
	}
	req.Symbols = splitSymbols(symbols)
	req.DaysAhead = days
	if format != "" {
		req.Format = format
	}
	req.Mode = mode
	return req, xhttp.Validate(&req)
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
