// Package ingest turns an input source into an ordered stream of raw lines.
// Exactly one goroutine reads the source and sends on a buffered FIFO
// channel; when the channel is full the reader blocks, so no line is ever
// dropped. The channel closing is the end-of-stream signal.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/nxadm/tail"
)

type SourceKind string

const (
	SourceStdin SourceKind = "stdin"
	SourceFile  SourceKind = "file"
	SourceDemo  SourceKind = "demo"
)

type Options struct {
	Source      SourceKind
	Path        string
	Follow      bool
	ScanBufSize int // per-line max (bytes)
}

type Line struct {
	Text string
	When time.Time
}

func Read(ctx context.Context, opt Options) (<-chan Line, <-chan error) {
	out := make(chan Line, 1024)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		switch opt.Source {
		case SourceStdin:
			readFromReader(ctx, os.Stdin, opt.ScanBufSize, out, errs)
		case SourceFile:
			if opt.Follow {
				readFromTail(ctx, opt.Path, out, errs)
				return
			}
			f, err := os.Open(opt.Path)
			if err != nil {
				errs <- err
				return
			}
			defer f.Close()
			readFromReader(ctx, f, opt.ScanBufSize, out, errs)
		case SourceDemo:
			demo(ctx, out)
		default:
			errs <- errors.New("unknown source kind")
		}
	}()

	return out, errs
}

func readFromReader(ctx context.Context, r io.Reader, maxBuf int, out chan<- Line, errs chan<- error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*64)
	scanner.Buffer(buf, maxBuf)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		out <- Line{Text: scanner.Text(), When: time.Now()}
	}
	if err := scanner.Err(); err != nil {
		errs <- err
	}
}

func readFromTail(ctx context.Context, path string, out chan<- Line, errs chan<- error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
		Poll:      true,
	})
	if err != nil {
		errs <- err
		return
	}
	defer t.Cleanup()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case l, ok := <-t.Lines:
			if !ok {
				return
			}
			if l.Err != nil {
				errs <- l.Err
				continue
			}
			out <- Line{Text: l.Text, When: time.Now()}
		}
	}
}

// demo emits an endless CSV stream so the viewer has something to chew on
// without any input wired up.
func demo(ctx context.Context, out chan<- Line) {
	services := []string{"api", "worker", "ingress", "billing"}
	levels := []string{"info", "info", "info", "warn", "error"}
	msgs := []string{"request served", "cache miss", "retrying upstream", "slow query", "connection reset"}

	out <- Line{Text: "ts,level,service,msg,lat_ms", When: time.Now()}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			line := fmt.Sprintf("%s,%s,%s,%s,%d",
				time.Now().Format(time.RFC3339),
				levels[rng.Intn(len(levels))],
				services[rng.Intn(len(services))],
				msgs[rng.Intn(len(msgs))],
				rng.Intn(900)+10)
			out <- Line{Text: line, When: time.Now()}
		}
	}
}
