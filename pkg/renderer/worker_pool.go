package renderer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // Index into the task list
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Stats  RenderStats
}

// WorkerPool renders tiles in parallel on a bounded set of goroutines.
// Tiles never overlap, so workers write disjoint regions of the shared
// pixel stats array.
type WorkerPool struct {
	raytracer  *Raytracer
	numWorkers int
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// A non-positive count uses one worker per CPU.
func NewWorkerPool(raytracer *Raytracer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		raytracer:  raytracer,
		numWorkers: numWorkers,
	}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Run renders every task and calls onResult for each finished tile.
// onResult is always called from the calling goroutine, one result at a time.
// Cancelling ctx stops tiles that have not started yet and Run returns ctx.Err().
func (wp *WorkerPool) Run(ctx context.Context, tasks []TileTask, onResult func(TileResult)) error {
	results := make(chan TileResult, len(tasks)) // Workers never block on send
	done := make(chan error, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	go func() {
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stats := wp.raytracer.RenderBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)
				results <- TileResult{TaskID: task.TaskID, Stats: stats}
				return nil
			})
		}
		done <- g.Wait()
		close(results)
	}()

	for result := range results {
		if onResult != nil {
			onResult(result)
		}
	}
	return <-done
}
