package main

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/strager/slots"
	"github.com/strager/slots/mdtest"
)

// caseResult is the outcome of one Markdown case.
type caseResult struct {
	file string
	tc   mdtest.TestCase
	err  error
}

// runCases extracts the cases of every file and checks them on a pool of
// the given size. Results keep file and case order.
func runCases(filenames []string, parallelism int) ([]caseResult, error) {
	var results []caseResult
	for _, filename := range filenames {
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filename, err)
		}
		testCases, err := mdtest.ExtractTestCases(string(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		for _, tc := range testCases {
			results = append(results, caseResult{file: filename, tc: tc})
		}
	}

	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return nil, fmt.Errorf("failed to create check worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range results {
		r := &results[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			r.err = slots.CheckCase(r.tc)
		}); err != nil {
			wg.Done()
			r.err = fmt.Errorf("failed to submit case: %w", err)
		}
	}
	wg.Wait()
	return results, nil
}
