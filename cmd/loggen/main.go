// loggen emits delimited sample data for exercising nless: CSV, TSV,
// pipe-separated and Apache-style access lines, at a configurable rate.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const (
	formatCSV    = "csv"
	formatTSV    = "tsv"
	formatPipe   = "pipe"
	formatAccess = "access"
)

var services = []string{"api", "auth", "billing", "ingest", "frontend"}
var levels = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}
var methods = []string{"GET", "GET", "GET", "POST", "PUT", "DELETE"}
var paths = []string{"/", "/login", "/api/v1/items", "/api/v1/items/42", "/health", "/metrics"}
var messages = []string{
	"request completed",
	"cache miss",
	"retrying upstream",
	"slow query detected",
	"connection reset by peer",
	"user authenticated",
}

func main() {
	var (
		format      string
		rate        float64
		count       int
		outPath     string
		toStdout    bool
		durationStr string
		seed        int64
	)

	flag.StringVar(&format, "format", formatCSV, "output format: csv, tsv, pipe or access")
	flag.Float64Var(&rate, "rate", 5.0, "lines per second")
	flag.IntVar(&count, "count", 0, "stop after N lines (0 = no limit)")
	flag.StringVar(&outPath, "out", "", "output file path (default: stdout)")
	flag.BoolVar(&toStdout, "stdout", false, "force stdout even when -out is set")
	flag.StringVar(&durationStr, "duration", "", "optional run duration (e.g. 30s, 2m); empty runs until interrupted")
	flag.Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	flag.Parse()

	if !isSupported(format) {
		fmt.Fprintf(os.Stderr, "unsupported format: %s\n", format)
		os.Exit(2)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	abort := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(abort)
	}()

	var deadline time.Time
	if durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid duration: %v\n", err)
			os.Exit(2)
		}
		deadline = time.Now().Add(d)
	}
	shouldStop := func() bool {
		select {
		case <-abort:
			return true
		default:
		}
		return !deadline.IsZero() && time.Now().After(deadline)
	}

	out := os.Stdout
	if outPath != "" && !toStdout {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
		fmt.Fprintf(os.Stderr, "generating %s lines -> %s at %.2f/s\n", format, outPath, rate)
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	if h := header(format); h != "" {
		fmt.Fprintln(w, h)
	}

	interval := time.Duration(float64(time.Second) / rate)
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	written := 0
	for !shouldStop() {
		if count > 0 && written >= count {
			break
		}
		fmt.Fprintln(w, line(format, rng))
		written++
		w.Flush()
		select {
		case <-ticker.C:
		case <-abort:
			return
		}
	}
}

func isSupported(f string) bool {
	switch f {
	case formatCSV, formatTSV, formatPipe, formatAccess:
		return true
	}
	return false
}

func header(format string) string {
	cols := []string{"ts", "level", "service", "status", "latency_ms", "msg"}
	switch format {
	case formatCSV:
		return strings.Join(cols, ",")
	case formatTSV:
		return strings.Join(cols, "\t")
	case formatPipe:
		return strings.Join(cols, "|")
	}
	return ""
}

func line(format string, rng *rand.Rand) string {
	now := time.Now().UTC()
	switch format {
	case formatAccess:
		// 127.0.0.1 - - [01/Jan/2025:12:00:02 +0000] "GET / HTTP/1.1" 200 1234
		return fmt.Sprintf("10.0.%d.%d - - [%s] \"%s %s HTTP/1.1\" %d %d",
			rng.Intn(256), rng.Intn(256),
			now.Format("02/Jan/2006:15:04:05 -0700"),
			methods[rng.Intn(len(methods))],
			paths[rng.Intn(len(paths))],
			status(rng),
			rng.Intn(64*1024))
	default:
		cols := []string{
			now.Format(time.RFC3339),
			levels[rng.Intn(len(levels))],
			services[rng.Intn(len(services))],
			fmt.Sprintf("%d", status(rng)),
			fmt.Sprintf("%d", 1+rng.Intn(2000)),
			messages[rng.Intn(len(messages))],
		}
		switch format {
		case formatTSV:
			return strings.Join(cols, "\t")
		case formatPipe:
			return strings.Join(cols, "|")
		}
		return strings.Join(cols, ",")
	}
}

func status(rng *rand.Rand) int {
	codes := []int{200, 200, 200, 200, 201, 204, 301, 400, 404, 500, 503}
	return codes[rng.Intn(len(codes))]
}
