// Package batch ingests many statement files concurrently and groups the
// results by account.
package batch

import (
	"context"
	"runtime"
	"sync"

	"fjacquet/bankstmt/internal/logging"
)

// Pool bounds the number of concurrent workers.
type Pool struct {
	logger      logging.Logger
	workerCount int
}

// NewPool creates a pool. A non-positive count uses the number of CPUs.
func NewPool(workers int, logger logging.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		logger:      logging.OrDefault(logger),
		workerCount: workers,
	}
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	return p.workerCount
}

type indexedItem[T any] struct {
	index int
	item  T
}

type indexedResult[R any] struct {
	index  int
	result R
}

// Process applies fn to every item and returns the results in input order.
// Items not started before ctx is cancelled keep the zero value of R.
func Process[T, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) R) []R {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results
	}

	workers := p.workerCount
	if workers > len(items) {
		workers = len(items)
	}
	if workers == 1 {
		for i, item := range items {
			if ctx.Err() != nil {
				break
			}
			results[i] = fn(ctx, item)
		}
		return results
	}

	itemChan := make(chan indexedItem[T], workers)
	resultChan := make(chan indexedResult[R], len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker(ctx, &wg, itemChan, resultChan, fn)
	}

	go func() {
		defer close(itemChan)
		for i, item := range items {
			select {
			case itemChan <- indexedItem[T]{index: i, item: item}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for r := range resultChan {
		results[r.index] = r.result
	}

	p.logger.Debug("Concurrent processing completed",
		logging.F(logging.FieldCount, len(items)),
		logging.F(logging.FieldWorkers, workers))
	return results
}

func worker[T, R any](ctx context.Context, wg *sync.WaitGroup, items <-chan indexedItem[T], results chan<- indexedResult[R], fn func(context.Context, T) R) {
	defer wg.Done()
	for {
		select {
		case it, ok := <-items:
			if !ok {
				return
			}
			results <- indexedResult[R]{index: it.index, result: fn(ctx, it.item)}
		case <-ctx.Done():
			return
		}
	}
}
