package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"nless/internal/delim"
	"nless/internal/ingest"
	"nless/internal/util/logx"
)

// IO and pipeline orchestration.
func setupPipeline(m *Model) tea.Cmd {
	src := ingest.SourceDemo
	if m.cfg.UseStdin {
		src = ingest.SourceStdin
	}
	if !m.cfg.UseStdin && m.cfg.FilePath != "" {
		src = ingest.SourceFile
	}
	m.lines, m.errs = ingest.Read(m.ctx, ingest.Options{
		Source:      src,
		Path:        m.cfg.FilePath,
		Follow:      m.cfg.Follow,
		ScanBufSize: m.cfg.MaxLineBytes,
	})
	logx.Infof("ingest: source=%s path=%s follow=%v", src, m.cfg.FilePath, m.cfg.Follow)

	return func() tea.Msg {
		// Buffer until we have at least one line and a short window has
		// passed, so inference sees a few lines instead of just the first.
		// Everything buffered here is replayed into the store later; nothing
		// is dropped.
		buffered := make([]ingest.Line, 0, 1024)
		timer := time.NewTimer(500 * time.Millisecond)
		defer timer.Stop()
		haveLine := false
		minElapsed := false
		for !(haveLine && minElapsed) {
			select {
			case l, ok := <-m.lines:
				if !ok {
					if !haveLine {
						return tea.Quit()
					}
					minElapsed = true
					break
				}
				buffered = append(buffered, l)
				haveLine = true
			case <-timer.C:
				minElapsed = true
			case <-m.ctx.Done():
				return tea.Quit()
			}
		}

		const maxSample = 50
		sample := make([]string, 0, maxSample)
		for i := 0; i < len(buffered) && i < maxSample; i++ {
			sample = append(sample, buffered[i].Text)
		}

		spec, how := chooseDelimiter(m, sample)
		logx.Infof("delimiter: %s (%s)", spec.String(), how)

		// Remember the choice for this file so the next session skips
		// inference.
		if how != "cache" && !m.cfg.NoCache && strings.TrimSpace(m.cfg.FilePath) != "" {
			if err := delim.SaveCached(m.cfg.FilePath, spec); err != nil {
				logx.Warnf("delimiter cache: save failed: %v", err)
			}
		}

		return initMsg{spec: spec, buffered: buffered}
	}
}

// chooseDelimiter resolves the splitting spec in priority order: explicit
// flag, per-file cache, heuristic inference, then an optional OpenAI pattern
// suggestion when inference gave up and the assist is configured.
func chooseDelimiter(m *Model, sample []string) (delim.Spec, string) {
	if m.cfg.Delimiter != "" {
		s, err := delim.Parse(m.cfg.Delimiter)
		if err == nil {
			return s, "flag"
		}
		logx.Warnf("delimiter: invalid -delimiter %q: %v", m.cfg.Delimiter, err)
	}
	if !m.cfg.NoCache && strings.TrimSpace(m.cfg.FilePath) != "" {
		if s, ok := delim.LoadCached(m.cfg.FilePath); ok {
			return s, "cache"
		}
	}
	s := delim.Infer(sample)
	if s.Kind != delim.KindRaw || m.cfg.Offline || m.cfg.OpenAIKey() == "" {
		return s, "inferred"
	}
	// Unstructured so far; ask the assist for a named-group pattern.
	timeout := time.Duration(m.cfg.OpenAITimeoutSec) * time.Second
	a := delim.NewAssist(m.cfg.OpenAIKey(), m.cfg.OpenAIBase, m.cfg.OpenAIModel, timeout)
	ctx, cancel := context.WithTimeout(m.ctx, timeout)
	defer cancel()
	if as, err := a.SuggestPattern(ctx, sample); err == nil {
		return as, "assist"
	} else {
		logx.Warnf("delimiter assist: %v", err)
	}
	return s, "inferred"
}

// waitLines blocks for one line, then drains whatever else is already
// queued so a burst becomes a single table refresh.
func waitLines(m *Model) tea.Cmd {
	return func() tea.Msg {
		l, ok := <-m.lines
		if !ok {
			return eofMsg{}
		}
		batch := []ingest.Line{l}
		for len(batch) < 512 {
			select {
			case more, ok := <-m.lines:
				if !ok {
					return linesMsg{batch: batch}
				}
				batch = append(batch, more)
			default:
				return linesMsg{batch: batch}
			}
		}
		return linesMsg{batch: batch}
	}
}

func waitErr(m *Model) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-m.errs
		if !ok {
			return nil
		}
		return errMsg{err: err}
	}
}
