package buffer

import (
	"runtime"
	"sync"
	"testing"
)

func TestRingSize(t *testing.T) {
	for _, c := range []struct{ size, want int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{100, 128},
		{128, 128},
	} {
		if got := NewRing[int](c.size).Cap(); got != c.want {
			t.Errorf("NewRing(%d).Cap() = %d, want: %d", c.size, got, c.want)
		}
	}
}

func TestRingFIFO(t *testing.T) {
	r := NewRing[int](4)
	if _, ok := r.Pop(); ok {
		t.Fatal("Pop on an empty ring succeeded")
	}
	// Go round a few times to cover wrapping.
	next := 0
	for round := 0; round < 5; round++ {
		for i := 0; i < 4; i++ {
			if !r.Push(round*4 + i) {
				t.Fatalf("round %d: Push %d failed", round, i)
			}
		}
		if r.Push(-1) {
			t.Fatalf("round %d: Push into a full ring succeeded", round)
		}
		if r.Len() != 4 {
			t.Errorf("round %d: Len() = %d, want: 4", round, r.Len())
		}
		for i := 0; i < 4; i++ {
			v, ok := r.Pop()
			if !ok || v != next {
				t.Fatalf("round %d: Pop() = %d, %v, want: %d, true", round, v, ok, next)
			}
			next++
		}
	}
}

func TestRingDrain(t *testing.T) {
	r := NewRing[string](8)
	for _, s := range []string{"a", "b", "c"} {
		r.Push(s)
	}
	got := r.Drain(nil, 2)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Drain(nil, 2) = %q, want: [a b]", got)
	}
	got = r.Drain(got[:0], 10)
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("Drain(nil, 10) = %q, want: [c]", got)
	}
}

func TestRingConcurrent(t *testing.T) {
	const n = 10000
	r := NewRing[int](64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; {
			if !r.Push(i) {
				runtime.Gosched()
				continue
			}
			i++
		}
	}()
	for want := 0; want < n; {
		v, ok := r.Pop()
		if !ok {
			runtime.Gosched()
			continue
		}
		if v != want {
			t.Fatalf("Pop() = %d, want: %d", v, want)
		}
		want++
	}
	wg.Wait()
}
