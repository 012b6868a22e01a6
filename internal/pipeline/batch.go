package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/PatrickRutledge/bill-of-lading-automation/internal/bol"
)

// ParseAll parses texts concurrently with at most workers goroutines and
// returns records in input order. workers <= 0 uses GOMAXPROCS.
func ParseAll(ctx context.Context, parser *bol.Parser, texts []string, workers int) ([]bol.Record, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([]bol.Record, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = parser.Parse(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
