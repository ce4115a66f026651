package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// branch is one independent fetch of a fan-out. run writes only its own
// result slot and leaves the default in place on failure.
type branch struct {
	name string
	run  func(ctx context.Context) error
}

// fanOut runs every branch concurrently and waits for all of them. Failing
// branches are logged and returned by name, sorted.
func fanOut(ctx context.Context, logger *zap.Logger, branches ...branch) []string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		degraded []string
	)
	for _, b := range branches {
		wg.Add(1)
		go func(b branch) {
			defer wg.Done()
			err := safeRun(ctx, b)
			if err == nil {
				return
			}
			logger.Warn("fan-out branch failed, using default", zap.String("branch", b.name), zap.Error(err))
			mu.Lock()
			degraded = append(degraded, b.name)
			mu.Unlock()
		}(b)
	}
	wg.Wait()
	sort.Strings(degraded)
	return degraded
}

func safeRun(ctx context.Context, b branch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return b.run(ctx)
}
