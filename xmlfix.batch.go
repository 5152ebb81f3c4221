package xmlfix

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultBatchWorkers is the fan-out width of RepairBatch.
const DefaultBatchWorkers = 8

// BatchResult is the outcome of repairing one input of a batch. Inputs are
// isolated: one failing input never affects the others.
type BatchResult struct {
	// Index is the input's position in the batch.
	Index int

	// Output is the repaired XML, empty when Err is set.
	Output string

	// Report details the repairs performed.
	Report *RepairReport

	// Err is the per-input failure, if any.
	Err error
}

// RepairBatch repairs every input concurrently and returns results in
// input order. The engine is stateless per call, so inputs fan out across
// a bounded worker pool with no locking. Cancelling the context marks all
// inputs not yet started with the context error.
func (e *Engine) RepairBatch(ctx context.Context, inputs []string) []BatchResult {
	e.logger.Debug(LogMsgBatchStart,
		zap.Int(LogFieldInputs, len(inputs)),
		zap.Int(LogFieldWorkers, DefaultBatchWorkers))

	results := make([]BatchResult, len(inputs))
	sem := make(chan struct{}, DefaultBatchWorkers)
	var wg sync.WaitGroup

	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			results[i] = BatchResult{Index: i, Err: err}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, input string) {
			defer wg.Done()
			defer func() { <-sem }()

			output, report, err := e.RepairWithReport(input)
			results[i] = BatchResult{
				Index:  i,
				Output: output,
				Report: report,
				Err:    err,
			}
		}(i, input)
	}

	wg.Wait()
	e.logger.Debug(LogMsgBatchEnd, zap.Int(LogFieldInputs, len(results)))
	return results
}

// RepairBatch creates a one-shot engine and repairs the inputs with it.
func RepairBatch(ctx context.Context, inputs []string, opts ...Option) ([]BatchResult, error) {
	engine, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return engine.RepairBatch(ctx, inputs), nil
}
