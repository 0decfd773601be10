// Package monitor scans and tails build-server log files. It understands
// the JSON lines zap emits but passes unstructured lines through the level
// filter untouched, so logs from other components can be tailed too.
package monitor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"
)

// Options filters log lines during a scan.
type Options struct {
	// Level is the minimum severity to keep: debug, info, warn, error.
	// Empty keeps everything.
	Level string
	// Pattern, when set, keeps only lines it matches.
	Pattern *regexp.Regexp
	// Tail keeps only the last N matches of a scan. 0 keeps all. Ignored
	// by Follow, which streams every match as it appears.
	Tail int
}

var severity = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
	"fatal": 4,
}

// Scan reads the log file once and returns the matching lines.
func Scan(path string, opts Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	lines, err := scan(f, opts)
	if err != nil {
		return nil, err
	}
	if opts.Tail > 0 && len(lines) > opts.Tail {
		lines = lines[len(lines)-opts.Tail:]
	}
	return lines, nil
}

// Follow polls the file for appended lines and sends matches to out until
// the context is cancelled. Lines already present when Follow starts are
// skipped; callers that want them run Scan first. Truncation (log rotation)
// resets the read offset to the start of the new file.
func Follow(ctx context.Context, path string, opts Options, interval time.Duration, out chan<- string) error {
	var offset int64
	if fi, err := os.Stat(path); err == nil {
		offset = fi.Size()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		fi, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("failed to stat log file: %w", err)
		}
		if fi.Size() < offset {
			offset = 0
		}
		if fi.Size() == offset {
			continue
		}

		lines, pos, err := scanFrom(path, offset, opts)
		if err != nil {
			return err
		}
		offset = pos

		for _, line := range lines {
			select {
			case out <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func scanFrom(path string, offset int64, opts Options) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("failed to seek log file: %w", err)
	}
	lines, err := scan(f, opts)
	if err != nil {
		return nil, offset, err
	}
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, offset, err
	}
	return lines, pos, nil
}

func scan(r io.Reader, opts Options) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var matches []string
	for scanner.Scan() {
		line := scanner.Text()
		if !matchLevel(line, opts.Level) {
			continue
		}
		if opts.Pattern != nil && !opts.Pattern.MatchString(line) {
			continue
		}
		matches = append(matches, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	return matches, nil
}

// matchLevel keeps a line when its level is at or above min. Lines that are
// not zap JSON have no parseable level and always pass.
func matchLevel(line, min string) bool {
	floor, ok := severity[min]
	if !ok {
		return true
	}

	var entry struct {
		Level string `json:"level"`
	}
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return true
	}
	lvl, ok := severity[entry.Level]
	if !ok {
		return true
	}
	return lvl >= floor
}
