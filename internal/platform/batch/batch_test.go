package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMapBoundsParallelism(t *testing.T) {
	const (
		tasks = 50
		limit = 5
	)

	var inFlight, peak int64
	items := make([]int, tasks)
	for i := range items {
		items[i] = i
	}

	res := Map(context.Background(), limit, items, func(_ context.Context, n int) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return n * 2, nil
	})

	if got := atomic.LoadInt64(&peak); got > limit {
		t.Fatalf("in-flight peak = %d, want <= %d", got, limit)
	}
	if len(res) != tasks {
		t.Fatalf("len(res) = %d, want %d", len(res), tasks)
	}
	for i, r := range res {
		if r.Err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, r.Err)
		}
		if r.Value != i*2 {
			t.Fatalf("task %d: value = %d, want %d", i, r.Value, i*2)
		}
	}
}

func TestMapAdmitsInOrder(t *testing.T) {
	var mu sync.Mutex
	var started []int

	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	Map(context.Background(), 1, items, func(_ context.Context, n int) (struct{}, error) {
		mu.Lock()
		started = append(started, n)
		mu.Unlock()
		return struct{}{}, nil
	})

	for i, n := range started {
		if n != i {
			t.Fatalf("start order %v, want ascending from 0", started)
		}
	}
	if len(started) != len(items) {
		t.Fatalf("started %d tasks, want %d", len(started), len(items))
	}
}

func TestMapResultsStayAligned(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"a", "b", "c", "d"}

	res := Map(context.Background(), 4, items, func(_ context.Context, s string) (string, error) {
		if s == "c" {
			return "", boom
		}
		return s + s, nil
	})

	for i, r := range res {
		if items[i] == "c" {
			if !errors.Is(r.Err, boom) {
				t.Fatalf("item c: err = %v, want boom", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Fatalf("item %q: unexpected error: %v", items[i], r.Err)
		}
		if want := items[i] + items[i]; r.Value != want {
			t.Fatalf("item %q: value = %q, want %q", items[i], r.Value, want)
		}
	}
}

func TestMapCancelFailsRemainder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	items := make([]int, 10)
	for i := range items {
		items[i] = i
	}

	res := Map(ctx, 1, items, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			cancel()
		}
		return n, nil
	})

	for i := 0; i <= 2; i++ {
		if res[i].Err != nil {
			t.Fatalf("task %d: unexpected error: %v", i, res[i].Err)
		}
	}
	for i := 3; i < len(res); i++ {
		if !errors.Is(res[i].Err, context.Canceled) {
			t.Fatalf("task %d: err = %v, want context.Canceled", i, res[i].Err)
		}
	}
}

func TestMapClampsLimit(t *testing.T) {
	for _, limit := range []int{-3, 0, 1, 100} {
		t.Run(fmt.Sprintf("limit_%d", limit), func(t *testing.T) {
			res := Map(context.Background(), limit, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
				return n, nil
			})
			if len(res) != 3 {
				t.Fatalf("len(res) = %d, want 3", len(res))
			}
			for i, r := range res {
				if r.Err != nil || r.Value != i+1 {
					t.Fatalf("res[%d] = {%d, %v}", i, r.Value, r.Err)
				}
			}
		})
	}
}

func TestMapEmptyInput(t *testing.T) {
	res := Map(context.Background(), 5, nil, func(_ context.Context, n int) (int, error) {
		t.Fatal("fn called for empty input")
		return 0, nil
	})
	if len(res) != 0 {
		t.Fatalf("len(res) = %d, want 0", len(res))
	}
}

func TestRun(t *testing.T) {
	boom := errors.New("boom")
	var calls int64

	fns := []func(ctx context.Context) error{
		func(context.Context) error { atomic.AddInt64(&calls, 1); return nil },
		func(context.Context) error { atomic.AddInt64(&calls, 1); return boom },
		func(context.Context) error { atomic.AddInt64(&calls, 1); return nil },
	}

	errs := Run(context.Background(), 2, fns)
	if atomic.LoadInt64(&calls) != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if errs[0] != nil || errs[2] != nil {
		t.Fatalf("errs = %v, want only index 1 set", errs)
	}
	if !errors.Is(errs[1], boom) {
		t.Fatalf("errs[1] = %v, want boom", errs[1])
	}
}
