package player

import "testing"

func TestQueueAppendAndCurrent(t *testing.T) {
	q := &Queue{}
	if _, ok := q.Current(); ok {
		t.Fatalf("empty queue has no current item")
	}

	q.Append(Item{Title: "a"}, Item{Title: "b"})
	item, ok := q.Current()
	if !ok || item.Title != "a" {
		t.Fatalf("current = %+v, ok = %v", item, ok)
	}
	if q.Len() != 2 {
		t.Fatalf("len = %d", q.Len())
	}
}

func TestQueueInsertNext(t *testing.T) {
	q := &Queue{}
	q.Append(Item{Title: "a"}, Item{Title: "c"})
	q.InsertNext(Item{Title: "b"})

	items := q.Items()
	if len(items) != 3 || items[1].Title != "b" {
		t.Fatalf("unexpected order %+v", items)
	}
}

func TestQueueNavigation(t *testing.T) {
	q := &Queue{}
	q.Append(Item{Title: "a"}, Item{Title: "b"})

	item, ok := q.Next()
	if !ok || item.Title != "b" {
		t.Fatalf("next = %+v, ok = %v", item, ok)
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("next past end should fail")
	}
	item, ok = q.Prev()
	if !ok || item.Title != "a" {
		t.Fatalf("prev = %+v, ok = %v", item, ok)
	}
	if _, ok := q.Prev(); ok {
		t.Fatalf("prev past start should fail")
	}
}

func TestQueueJumpAndClear(t *testing.T) {
	q := &Queue{}
	q.Append(Item{Title: "a"}, Item{Title: "b"}, Item{Title: "c"})

	if err := q.Jump(2); err != nil {
		t.Fatalf("jump: %v", err)
	}
	item, _ := q.Current()
	if item.Title != "c" {
		t.Fatalf("current after jump = %+v", item)
	}
	if err := q.Jump(9); err == nil {
		t.Fatalf("out of range jump should fail")
	}

	rev := q.Revision()
	q.Clear()
	if q.Len() != 0 || q.Revision() == rev {
		t.Fatalf("clear did not reset queue")
	}
}
