package coupon

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// parseCatalogue reads a gzipped coupon catalogue. Each non-blank line holds CODE,AMOUNT.
// Lines starting with # are comments. A code listed twice keeps its last amount.
func parseCatalogue(ctx context.Context, r io.Reader) (*MapCouponSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	set := NewMapCouponSet(1024)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%100_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, amount, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		set.Add(code, amount)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading coupon catalogue: %w", err)
	}

	return set, nil
}

func parseLine(line string) (string, decimal.Decimal, error) {
	code, rawAmount, ok := strings.Cut(line, ",")
	if !ok {
		return "", decimal.Zero, fmt.Errorf("expected CODE,AMOUNT but got %q", line)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return "", decimal.Zero, fmt.Errorf("empty coupon code in %q", line)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
	if err != nil {
		return "", decimal.Zero, fmt.Errorf("invalid amount for coupon %s: %w", code, err)
	}
	if amount.IsNegative() {
		return "", decimal.Zero, fmt.Errorf("negative amount for coupon %s", code)
	}

	return code, amount, nil
}
