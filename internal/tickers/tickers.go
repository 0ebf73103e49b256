// Package tickers loads the plain-text watch list.
package tickers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"SignalScanner/internal/model"
)

// ErrNoTickers means the list is absent or has no symbols.
var ErrNoTickers = fmt.Errorf("no tickers: %w", model.ErrConfigurationMissing)

// Load reads one symbol per line from path. Blank lines and lines starting
// with '#' are ignored, and duplicates keep their first position.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoTickers)
		}
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()

	symbols, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return symbols, nil
}

// Parse reads symbols from r.
func Parse(r io.Reader) ([]string, error) {
	var symbols []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		symbols = append(symbols, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ticker list: %w", err)
	}
	if len(symbols) == 0 {
		return nil, ErrNoTickers
	}
	return symbols, nil
}
