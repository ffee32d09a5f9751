package circular

import (
	"errors"
	"testing"
)

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEnqueueWraps(t *testing.T) {
	for _, tc := range []struct {
		name   string
		writes [][]int
		want   []int
	}{
		{"partial", [][]int{{1, 2}}, []int{1, 2}},
		{"exact", [][]int{{1, 2, 3, 4}}, []int{1, 2, 3, 4}},
		{"wrap", [][]int{{1, 2, 3}, {4, 5}}, []int{2, 3, 4, 5}},
		{"overflow", [][]int{{1}, {2, 3, 4, 5, 6, 7}}, []int{4, 5, 6, 7}},
		{"singles", [][]int{{1}, {2}, {3}, {4}, {5}, {6}}, []int{3, 4, 5, 6}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := CreateBuffer[int](4)
			for _, w := range tc.writes {
				b.Enqueue(w...)
			}
			if got := b.Values(nil); !equal(got, tc.want) {
				t.Fatalf("Values = %v, want %v", got, tc.want)
			}
			if b.Count() != len(tc.want) {
				t.Fatalf("Count = %d, want %d", b.Count(), len(tc.want))
			}
			last, ok := b.Last()
			if !ok || last != tc.want[len(tc.want)-1] {
				t.Fatalf("Last = %v, %v", last, ok)
			}
		})
	}
}

func TestRetrieve(t *testing.T) {
	b := CreateBuffer[int](3)
	b.Enqueue(1, 2, 3, 4)
	buf := make([]int, 3)
	if err := b.Retrieve(buf); err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if !equal(buf, []int{2, 3, 4}) {
		t.Fatalf("Retrieve = %v, want [2 3 4]", buf)
	}
	if err := b.Retrieve(make([]int, 2)); !errors.Is(err, ErrSize) {
		t.Fatalf("short target err = %v", err)
	}
}

func TestAt(t *testing.T) {
	b := CreateBuffer[string](2)
	if _, ok := b.Last(); ok {
		t.Fatal("empty buffer has a last element")
	}
	b.Push("a")
	b.Push("b")
	b.Push("c")
	if v, ok := b.At(0); !ok || v != "b" {
		t.Fatalf("At(0) = %q, %v, want b", v, ok)
	}
	if _, ok := b.At(2); ok {
		t.Fatal("At past count succeeded")
	}
	if b.Length() != 2 {
		t.Fatalf("Length = %d, want 2", b.Length())
	}
}

func TestZeroCapacity(t *testing.T) {
	b := CreateBuffer[int](0)
	b.Push(1)
	if b.Count() != 0 || len(b.Values(nil)) != 0 {
		t.Fatal("zero capacity buffer stored a value")
	}
}
