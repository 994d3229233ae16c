package queue

import (
	"sync"
	"testing"
)

// record stands in for a queued database row
type record struct {
	ID   int
	Code string
}

func TestQueue_New(t *testing.T) {
	q := New[record]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_PushPop(t *testing.T) {
	q := New[record]()

	if _, ok := q.Pop(); ok {
		t.Error("expected pop on empty queue to report false")
	}

	q.Push(record{ID: 1, Code: "a"}, record{ID: 2, Code: "b"})
	first, ok := q.Pop()
	if !ok || first.ID != 1 || first.Code != "a" {
		t.Errorf("expected {1, a}, got %+v (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_Take(t *testing.T) {
	tests := []struct {
		name     string
		max      int
		wantIDs  []int
		leftover int
	}{
		{"batch smaller than queue", 2, []int{1, 2}, 3},
		{"batch equal to queue", 5, []int{1, 2, 3, 4, 5}, 0},
		{"batch larger than queue", 9, []int{1, 2, 3, 4, 5}, 0},
		{"zero takes all", 0, []int{1, 2, 3, 4, 5}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New[record]()
			for i := 1; i <= 5; i++ {
				q.Push(record{ID: i})
			}

			got := q.Take(tt.max)

			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d items, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("item %d: expected ID %d, got %d", i, id, got[i].ID)
				}
			}
			if q.Len() != tt.leftover {
				t.Errorf("expected %d left, got %d", tt.leftover, q.Len())
			}
		})
	}
}

func TestQueue_RequeuePreservesOrder(t *testing.T) {
	q := New[record]()
	q.Push(record{ID: 1}, record{ID: 2}, record{ID: 3})

	batch := q.Take(2)
	q.Push(record{ID: 4})
	q.Requeue(batch)

	all := q.Take(0)
	want := []int{1, 2, 3, 4}
	if len(all) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %d, got %d", i, id, all[i].ID)
		}
	}

	q.Requeue(nil)
	if !q.Empty() {
		t.Error("requeue of nothing should leave queue empty")
	}
}

func TestQueue_Concurrent(t *testing.T) {
	q := New[record]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(record{ID: id})
		}(i)
	}
	wg.Wait()

	if q.Len() != 100 {
		t.Errorf("expected 100 items, got %d", q.Len())
	}

	results := make(chan []record, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- q.Take(15)
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for r := range results {
		total += len(r)
	}
	if total != 100 {
		t.Errorf("expected total 100 items, got %d", total)
	}
}
