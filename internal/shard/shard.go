// Package shard splits work lists into balanced contiguous chunks and runs one
// worker per chunk.
package shard

import (
	"context"
	"maps"

	"golang.org/x/sync/errgroup"
)

// Op processes one shard.
type Op[T, R any] func(ctx context.Context, chunk []T) (R, error)

// Split partitions items into exactly n contiguous shards whose sizes differ by
// at most one; the first len(items)%n shards get the extra element.
func Split[T any](items []T, n int) [][]T {
	n = max(n, 1)
	size, remainder := len(items)/n, len(items)%n

	shards := make([][]T, n)
	start := 0
	for i := range n {
		end := start + size
		if i < remainder {
			end++
		}
		shards[i] = items[start:end:end]
		start = end
	}
	return shards
}

// Run splits items into n shards, builds one op per shard with newOp and runs
// them concurrently. Results are returned in shard order. The first error
// cancels the remaining shards.
func Run[T, R any](ctx context.Context, items []T, n int, newOp func(worker int) Op[T, R]) ([]R, error) {
	shards := Split(items, n)
	results := make([]R, len(shards))

	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range shards {
		op := newOp(i)
		g.Go(func() error {
			result, err := op(ctx, chunk)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Union merges sets.
func Union[K comparable](sets []map[K]struct{}) map[K]struct{} {
	merged := make(map[K]struct{})
	for _, set := range sets {
		for k := range set {
			merged[k] = struct{}{}
		}
	}
	return merged
}

// Concat joins lists in shard order.
func Concat[T any](lists [][]T) []T {
	var total int
	for _, list := range lists {
		total += len(list)
	}

	merged := make([]T, 0, total)
	for _, list := range lists {
		merged = append(merged, list...)
	}
	return merged
}

// MergeMaps merges maps in shard order; later shards win on key collisions.
func MergeMaps[M ~map[K]V, K comparable, V any](parts []M) M {
	merged := make(M)
	for _, part := range parts {
		maps.Copy(merged, part)
	}
	return merged
}
