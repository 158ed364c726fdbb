package engine

import (
	"runtime"
	"sync"
)

// workerPool runs independent per-leg computations on a fixed set of
// goroutines. Legs are pure functions of immutable inputs, so the pool only
// needs submission and a join; results land in caller-indexed slots.
type workerPool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
}

// newWorkerPool creates a pool with the specified number of workers.
// Zero workers defaults to runtime.NumCPU().
func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &workerPool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
	}
}

func (p *workerPool) start() {
	p.once.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				for task := range p.tasks {
					task()
				}
			}()
		}
	})
}

// submit queues a task; it blocks when the queue is full.
func (p *workerPool) submit(task func()) {
	p.start()
	p.tasks <- task
}

// stop drains the queue and waits for the workers to exit.
func (p *workerPool) stop() {
	close(p.tasks)
	p.wg.Wait()
}
