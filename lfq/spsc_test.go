// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"sync"
	"testing"
)

func TestSPSC_Basic(t *testing.T) {
	q := NewSPSC[int](4)

	v := 9
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	got, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got != 9 {
		t.Fatalf("got %d, want 9", got)
	}
	if _, err := q.Dequeue(); !IsWouldBlock(err) {
		t.Fatalf("expected ErrWouldBlock on empty queue, got %v", err)
	}
}

func TestSPSC_Bounded(t *testing.T) {
	const n = 4
	q := NewSPSC[int](n)

	for i := 0; i < n; i++ {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	v := n
	if err := q.Enqueue(&v); !IsWouldBlock(err) {
		t.Fatalf("expected ErrWouldBlock when full, got %v", err)
	}
}

// TestSPSC_Pipeline mirrors the audio conversion handler's use: one poller
// goroutine streams subprocess output lines to one log-writer goroutine.
func TestSPSC_Pipeline(t *testing.T) {
	if RaceEnabled {
		t.Skip("skipped under race detector")
	}

	const count = 10000
	q := NewSPSC[int](256)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < count; i++ {
			v := i
			for {
				if err := q.Enqueue(&v); err == nil {
					break
				}
			}
		}
	}()

	for i := 0; i < count; i++ {
		var got int
		var err error
		for {
			got, err = q.Dequeue()
			if err == nil {
				break
			}
		}
		if got != i {
			t.Fatalf("got %d, want %d", got, i)
		}
	}
	wg.Wait()
}
