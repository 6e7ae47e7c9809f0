package main

import (
	"context"
	"fmt"
	"time"

	reco "github.com/next-exp/reco_go/pkg"
	"github.com/next-exp/reco_go/pkg/writer"
)

type WorkerResult struct {
	EventID int
	Result  *reco.Result
	Err     error
}

func worker(ctx context.Context, id int, rec *reco.Reconstructor, jobs <-chan reco.Event, results chan<- WorkerResult) {
	for event := range jobs {
		if VerbosityLevel > 1 {
			logger.Info(fmt.Sprintf("Worker %d processing event %d", id, event.ID), "workers")
		}
		results <- processEvent(ctx, rec, event)
	}
}

// processEvent reconstructs one event and turns a panic into an error so
// the worker carries on with the next one.
func processEvent(ctx context.Context, rec *reco.Reconstructor, event reco.Event) (out WorkerResult) {
	out.EventID = event.ID
	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("reconstruction recovered from panic on event %d: %v", event.ID, r)
		}
	}()
	out.Result, out.Err = rec.Reconstruct(ctx, event)
	return out
}

func sendEventsToWorkers(ctx context.Context, events []reco.Event, jobs chan<- reco.Event) {
	defer close(jobs)
	for _, event := range events {
		select {
		case jobs <- event:
		case <-ctx.Done():
			return
		}
	}
}

// selectEvents applies skip and max_events to the ordered events.
func selectEvents(events []reco.Event, skip int, maxEvents int) []reco.Event {
	if skip >= len(events) {
		return nil
	}
	if skip < 0 {
		skip = 0
	}
	events = events[skip:]
	if maxEvents >= 0 && maxEvents < len(events) {
		events = events[:maxEvents]
	}
	return events
}

type runStats struct {
	Done   int
	Errors int
}

// processWorkerResults writes results as they arrive. Failed events are
// logged and discarded.
func processWorkerResults(results <-chan WorkerResult, w *writer.Writer, nEvents int) runStats {
	var stats runStats
	var totalTime time.Duration
	for res := range results {
		if res.Err != nil {
			logger.Error(res.Err.Error())
			logger.Error(fmt.Sprintf("discarding event %d", res.EventID))
			stats.Errors++
		} else {
			start := time.Now()
			if err := w.WriteEvent(res.Result); err != nil {
				logger.Error(err.Error())
				logger.Error(fmt.Sprintf("discarding event %d", res.EventID))
				stats.Errors++
			} else {
				stats.Done++
			}
			totalTime += time.Since(start)
		}
		if VerbosityLevel > 0 {
			message := fmt.Sprintf("Processed events: %d/%d", stats.Done+stats.Errors, nEvents)
			logger.Info(message, "workers")
		}
	}
	if VerbosityLevel > 0 {
		logger.Info(fmt.Sprintf("Total time writing: %d ms", totalTime.Milliseconds()), "workers")
	}
	return stats
}
