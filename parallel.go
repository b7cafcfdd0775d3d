package leafpack

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ParallelConfig controls parallel batch processing
type ParallelConfig struct {
	// Enabled enables parallel processing of batches
	Enabled bool

	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinFilesForParallel is the minimum batch size to use parallel processing
	// Below this threshold, files are processed sequentially
	MinFilesForParallel int
}

// Validate checks if the parallel configuration is valid
func (p *ParallelConfig) Validate() error {
	if !p.Enabled {
		return nil // Nothing to validate if disabled
	}

	if err := ValidateSize(p.MaxWorkers, "parallel max workers", 0, 1024); err != nil {
		return err
	}
	if err := ValidateSize(p.MinFilesForParallel, "parallel min files threshold", 1, 1000); err != nil {
		return err
	}

	return nil
}

// DefaultParallelConfig returns the default parallel processing configuration
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Enabled:             true,
		MaxWorkers:          runtime.NumCPU(),
		MinFilesForParallel: 4,
	}
}

// BatchResult is the outcome for one file of a batch
type BatchResult struct {
	Source string // Input path
	Output string // Path written, empty on failure
	Err    error  // Failure, if any
}

// PackAll packs every file in names into dstDir, optionally under password.
// Every file is attempted; the returned error joins the individual failures
// and results are reported in input order.
func (p *Packer) PackAll(names []string, dstDir string, password *string) ([]BatchResult, error) {
	return p.runBatch(names, func(name string) (string, error) {
		return p.pack(name, dstDir, password)
	})
}

// UnpackAll unpacks every container in names into dstDir
func (p *Packer) UnpackAll(names []string, dstDir string, passwords PasswordProvider) ([]BatchResult, error) {
	var mu sync.Mutex
	if passwords != nil {
		// Serialize the provider: it may prompt on a terminal.
		inner := passwords
		passwords = func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			return inner()
		}
	}
	return p.runBatch(names, func(name string) (string, error) {
		return p.UnpackFile(name, dstDir, passwords)
	})
}

// runBatch applies fn to every name, in parallel when configured. A panic in
// fn is converted into that file's error.
func (p *Packer) runBatch(names []string, fn func(string) (string, error)) ([]BatchResult, error) {
	results := make([]BatchResult, len(names))
	if len(names) == 0 {
		return results, nil
	}

	run := func(idx int) {
		defer func() {
			if r := recover(); r != nil {
				// Convert panic to error
				results[idx].Output = ""
				results[idx].Err = fmt.Errorf("panic in pack worker: %v", r)
			}
		}()
		results[idx].Source = names[idx]
		results[idx].Output, results[idx].Err = fn(names[idx])
	}

	cfg := p.opts.Parallel
	if !cfg.Enabled || len(names) < cfg.MinFilesForParallel {
		// Sequential processing
		for i := range names {
			run(i)
		}
		return results, batchError(results)
	}

	// Determine number of workers
	numWorkers := cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if numWorkers > len(names) {
		numWorkers = len(names)
	}

	var wg sync.WaitGroup
	jobChan := make(chan int, len(names))

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				run(idx)
			}
		}()
	}

	for i := range names {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()

	return results, batchError(results)
}

func batchError(results []BatchResult) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Source, r.Err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("batch completed with %d errors (processed %d files): %w",
		len(errs), len(results)-len(errs), errors.Join(errs...))
}
