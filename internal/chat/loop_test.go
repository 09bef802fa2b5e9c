package chat

import "testing"

func TestLoopRunsTasksInOrder(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	defer loop.Close()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		if !loop.Submit(func() { order = append(order, i) }) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	loop.Flush()
	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v", order)
		}
	}
}

func TestLoopRejectsSubmitAfterClose(t *testing.T) {
	loop := NewLoop()
	go loop.Run()
	loop.Close()
	if loop.Submit(func() {}) {
		t.Fatalf("submit accepted after close")
	}
	// Flush on a closed loop must not block.
	loop.Flush()
}
