package sample

import (
	"context"
	"sync"

	"github.com/npillmayer/ocrgen/core"
)

// Skip is called for every word for which no sample could be created.
type Skip func(word string, err error)

// Stats summarizes a batch run.
type Stats struct {
	Created int
	Skipped int
}

// Batch assembles samples for words with a pool of workers, each owning an
// assembler created by newAssembler, and hands the records to sink.
//
// Sample errors are reported to skip (which may be nil) and do not stop the
// batch. sink and skip are called from several goroutines. A fatal error
// (see core.IsFatal), a sink error or a cancelled context stop all workers;
// the first such error is returned.
func Batch(ctx context.Context, words []string, workers int, newAssembler func() (*Assembler, error),
	sink Sink, skip Skip) (Stats, error) {
	//
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobs := make(chan string)
	var mu sync.Mutex
	var stats Stats
	var firstErr error
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		asm, err := newAssembler()
		if err != nil {
			fail(err)
			break
		}
		wg.Add(1)
		go func(asm *Assembler) {
			defer wg.Done()
			for word := range jobs {
				if ctx.Err() != nil {
					continue // drain
				}
				rec, err := asm.Assemble(word)
				if err == nil {
					err = sink.Put(rec)
					if err != nil {
						fail(err)
						continue
					}
					mu.Lock()
					stats.Created++
					mu.Unlock()
					continue
				}
				if core.IsFatal(err) {
					fail(err)
					continue
				}
				tracer().Infof("skipping %q: %s", word, core.UserError(err))
				mu.Lock()
				stats.Skipped++
				mu.Unlock()
				if skip != nil {
					skip(word, err)
				}
			}
		}(asm)
	}
feed:
	for _, word := range words {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- word:
		}
	}
	close(jobs)
	wg.Wait()
	mu.Lock()
	defer mu.Unlock()
	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return stats, firstErr
}
