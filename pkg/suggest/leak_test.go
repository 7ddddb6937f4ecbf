//go:build test

package suggest

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var longPatterns = [][]string{
	{"ক", "কল", "কলম"},
	{"ব", "বা", "বাং", "বাংলা"},
	{"আ", "আম", "আমা", "আমার"},
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 1000},
		{workers: 4, iterationsPerWorker: 250},
		{workers: 8, iterationsPerWorker: 125},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	completer := NewCompleter()
	for i := 0; i < 5000; i++ {
		for _, p := range longPatterns {
			completer.AddWord(fmt.Sprintf("%s%d", p[len(p)-1], i))
		}
	}

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, pattern := range longPatterns {
					for _, prefix := range pattern {
						_ = completer.Complete(prefix, 10)
					}
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
	memDelta := int64(final.Alloc) - int64(baseline.Alloc)

	t.Logf("workers=%d iter_per_worker=%d mem_delta=%d bytes goroutine_delta=%d",
		workers, iterationsPerWorker, memDelta, goroutineDelta)

	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}
