package tasklist

import (
	"testing"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/task"
)

func threeTasks() *List {
	return New(
		task.NewTodo("one"),
		task.NewDeadline("two", "Friday"),
		task.NewEvent("three", "2pm", "4pm"),
	)
}

func TestAddAndGet(t *testing.T) {
	l := New()
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}

	l.Add(task.NewTodo("a"))
	l.Add(task.NewTodo("b"))

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	got, err := l.Get(1)
	if err != nil {
		t.Fatalf("Get(1) error: %v", err)
	}
	if got.Description != "b" {
		t.Errorf("Get(1).Description = %q, want %q", got.Description, "b")
	}
}

func TestGet_OutOfRange(t *testing.T) {
	l := threeTasks()
	for _, idx := range []int{-1, 3, 99} {
		if _, err := l.Get(idx); !errors.Is(err, errors.ErrIndexOutOfRange) {
			t.Errorf("Get(%d) error = %v, want INDEX_OUT_OF_RANGE", idx, err)
		}
	}
}

func TestRemoveAt_ShiftsIndices(t *testing.T) {
	l := threeTasks()

	removed, err := l.RemoveAt(1)
	if err != nil {
		t.Fatalf("RemoveAt(1) error: %v", err)
	}
	if removed.Description != "two" {
		t.Errorf("removed = %q, want %q", removed.Description, "two")
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	all := l.All()
	if all[0].Description != "one" || all[1].Description != "three" {
		t.Errorf("remaining = [%q %q], want [one three]", all[0].Description, all[1].Description)
	}
}

func TestRemoveAt_OutOfRange(t *testing.T) {
	l := threeTasks()
	_, err := l.RemoveAt(3)
	tErr, ok := errors.As(err)
	if !ok || tErr.Code != errors.ErrIndexOutOfRange {
		t.Fatalf("RemoveAt(3) error = %v, want INDEX_OUT_OF_RANGE", err)
	}
	if tErr.Details["number"] != 4 {
		t.Errorf("Details[number] = %v, want 1-based 4", tErr.Details["number"])
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d after failed remove, want 3", l.Len())
	}
}

func TestMarkDone_ReportsChange(t *testing.T) {
	l := threeTasks()

	got, changed, err := l.MarkDone(0)
	if err != nil {
		t.Fatalf("MarkDone(0) error: %v", err)
	}
	if !changed || !got.Done {
		t.Errorf("first MarkDone: changed=%v done=%v, want true true", changed, got.Done)
	}

	got, changed, err = l.MarkDone(0)
	if err != nil {
		t.Fatalf("MarkDone(0) error: %v", err)
	}
	if changed || !got.Done {
		t.Errorf("second MarkDone: changed=%v done=%v, want false true", changed, got.Done)
	}
}

func TestMarkNotDone_ReportsChange(t *testing.T) {
	l := threeTasks()

	_, changed, err := l.MarkNotDone(2)
	if err != nil {
		t.Fatalf("MarkNotDone(2) error: %v", err)
	}
	if changed {
		t.Error("MarkNotDone on a not-done task reported a change")
	}

	if _, _, err := l.MarkDone(2); err != nil {
		t.Fatal(err)
	}
	got, changed, err := l.MarkNotDone(2)
	if err != nil {
		t.Fatal(err)
	}
	if !changed || got.Done {
		t.Errorf("MarkNotDone: changed=%v done=%v, want true false", changed, got.Done)
	}
}

func TestMark_OutOfRange(t *testing.T) {
	l := New()
	if _, _, err := l.MarkDone(0); !errors.Is(err, errors.ErrIndexOutOfRange) {
		t.Errorf("MarkDone on empty list error = %v", err)
	}
	if _, _, err := l.MarkNotDone(0); !errors.Is(err, errors.ErrIndexOutOfRange) {
		t.Errorf("MarkNotDone on empty list error = %v", err)
	}
}

func TestAll_IsSnapshot(t *testing.T) {
	l := threeTasks()
	all := l.All()
	all[0].Description = "changed"
	all[0].Mark()

	got, _ := l.Get(0)
	if got.Description != "one" || got.Done {
		t.Errorf("All() aliases list storage: %+v", got)
	}
}

func TestReplace(t *testing.T) {
	l := threeTasks()
	l.Replace([]task.Task{task.NewTodo("only")})

	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
	got, _ := l.Get(0)
	if got.Description != "only" {
		t.Errorf("Get(0) = %q, want %q", got.Description, "only")
	}
}
