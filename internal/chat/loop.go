package chat

import "sync"

// Loop serialises delivery work onto a single goroutine. Handlers that touch
// per-session state are posted here instead of running on the goroutine that
// read the input line.
type Loop struct {
	mu     sync.Mutex
	tasks  chan func()
	closed bool
	done   chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 256),
		done:  make(chan struct{}),
	}
}

// Run drains tasks until Close is called. Callers run it on its own
// goroutine.
func (l *Loop) Run() {
	for task := range l.tasks {
		task()
	}
	close(l.done)
}

// Submit posts a task for execution. It reports false once the loop has been
// closed.
func (l *Loop) Submit(task func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.tasks <- task
	return true
}

// Flush blocks until every task submitted before the call has run.
func (l *Loop) Flush() {
	barrier := make(chan struct{})
	if l.Submit(func() { close(barrier) }) {
		<-barrier
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.done
		return
	}
	l.closed = true
	close(l.tasks)
	l.mu.Unlock()
	<-l.done
}
