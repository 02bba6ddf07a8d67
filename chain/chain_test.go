package chain

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"testing"
	"weak"
)

// referenceSum walks through the public accessors only.
func referenceSum(head *Node) int64 {
	var total int64
	for n := head; n != nil; n = n.Next() {
		total += n.Value()
	}
	return total
}

func buildRange(n int) *Node {
	var head *Node
	for i := n - 1; i >= 0; i-- {
		head = New(int64(i), head)
	}
	return head
}

// ---------------------------------------------------------------------------
// Node
// ---------------------------------------------------------------------------

func TestNewAccessors(t *testing.T) {
	tail := New(2, nil)
	head := New(1, tail)

	if head.Value() != 1 {
		t.Errorf("head value = %d, want 1", head.Value())
	}
	if head.Next() != tail {
		t.Error("head.Next should be the tail node")
	}
	if tail.Next() != nil {
		t.Error("tail.Next should be nil")
	}
}

func TestFromSlice(t *testing.T) {
	if FromSlice(nil) != nil {
		t.Error("FromSlice(nil) should be the empty chain")
	}

	head := FromSlice([]int64{4, 5, 6})
	got := Values(head)
	want := []int64{4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("Values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Values[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestPrependSharesTail(t *testing.T) {
	tail := FromSlice([]int64{7, 8})
	a := Prepend([]int64{1}, tail)
	b := Prepend([]int64{2, 3}, tail)

	if a.Next() != tail {
		t.Error("a should link directly to the shared tail")
	}
	if b.Next().Next() != tail {
		t.Error("b should reach the shared tail after two nodes")
	}
}

// ---------------------------------------------------------------------------
// Sum
// ---------------------------------------------------------------------------

func TestSumEmpty(t *testing.T) {
	if got := Sum(nil); got != 0 {
		t.Errorf("Sum(nil) = %d, want 0", got)
	}
}

func TestSumSingle(t *testing.T) {
	if got := Sum(New(5, nil)); got != 5 {
		t.Errorf("Sum = %d, want 5", got)
	}
}

func TestSumThree(t *testing.T) {
	c := New(3, nil)
	b := New(2, c)
	a := New(1, b)
	if got := Sum(a); got != 6 {
		t.Errorf("Sum(A) = %d, want 6", got)
	}
}

func TestSumNegative(t *testing.T) {
	head := New(-7, New(2, nil))
	if got := Sum(head); got != -5 {
		t.Errorf("Sum = %d, want -5", got)
	}
	if got := Sum(New(-7, nil)); got != -7 {
		t.Errorf("Sum = %d, want -7", got)
	}
}

func TestSumWraps(t *testing.T) {
	head := New(math.MaxInt64, New(1, nil))
	if got := Sum(head); got != math.MinInt64 {
		t.Errorf("Sum = %d, want %d", got, int64(math.MinInt64))
	}
}

func TestSumMatchesReferenceWalk(t *testing.T) {
	for _, n := range []int{0, 1, 2, 10, 1000} {
		head := buildRange(n)
		want := int64(n) * int64(n-1) / 2
		if n == 0 {
			want = 0
		}
		if got := Sum(head); got != want {
			t.Errorf("Sum(range %d) = %d, want %d", n, got, want)
		}
		if got := referenceSum(head); got != Sum(head) {
			t.Errorf("reference walk = %d, Sum = %d", got, Sum(head))
		}
	}
}

func TestSumSharedTail(t *testing.T) {
	y := New(20, nil)
	x := New(10, y)
	z := New(30, y)

	for i := 0; i < 3; i++ {
		if got := Sum(x); got != 30 {
			t.Errorf("Sum(X) = %d, want 30", got)
		}
		if got := Sum(z); got != 50 {
			t.Errorf("Sum(Z) = %d, want 50", got)
		}
	}
	// Reverse order gives the same answers.
	if Sum(z) != 50 || Sum(x) != 30 {
		t.Error("results depend on call order")
	}
}

func TestSharedTailSurvivesDroppedHead(t *testing.T) {
	y := New(20, nil)
	x := New(10, y)
	z := New(30, y)
	wx, wy := weak.Make(x), weak.Make(y)
	x, y = nil, nil

	for i := 0; i < 5 && wx.Value() != nil; i++ {
		runtime.GC()
	}

	if wx.Value() != nil {
		t.Error("X is still reachable after its only owner dropped it")
	}
	shared := wy.Value()
	if shared == nil {
		t.Fatal("Y was collected while Z still points at it")
	}
	if shared.Value() != 20 {
		t.Errorf("Y value = %d, want 20", shared.Value())
	}
	if got := Sum(z); got != 50 {
		t.Errorf("Sum(Z) after dropping X = %d, want 50", got)
	}
	runtime.KeepAlive(z)
}

func TestDropLongChain(t *testing.T) {
	head := buildRange(1_000_000)
	if got := Len(head); got != 1_000_000 {
		t.Fatalf("Len = %d, want 1000000", got)
	}
	head = nil
	runtime.GC()
	_ = head
}

func TestSumConcurrentReaders(t *testing.T) {
	shared := buildRange(10_000)
	a := New(1, shared)
	b := New(2, shared)
	want := Sum(shared)

	var wg sync.WaitGroup
	errs := make(chan int64, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			head, extra := a, int64(1)
			if i%2 == 1 {
				head, extra = b, 2
			}
			if got := Sum(head); got != want+extra {
				errs <- got
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for got := range errs {
		t.Errorf("concurrent Sum = %d, want %d or %d", got, want+1, want+2)
	}
}

// ---------------------------------------------------------------------------
// Entry-point validation
// ---------------------------------------------------------------------------

func TestSumValue(t *testing.T) {
	got, err := SumValue(FromSlice([]int64{1, 2, 3}))
	if err != nil || got != 6 {
		t.Errorf("SumValue = %d, %v; want 6, nil", got, err)
	}

	got, err = SumValue(nil)
	if err != nil || got != 0 {
		t.Errorf("SumValue(nil) = %d, %v; want 0, nil", got, err)
	}

	var typedNil *Node
	got, err = SumValue(typedNil)
	if err != nil || got != 0 {
		t.Errorf("SumValue(typed nil) = %d, %v; want 0, nil", got, err)
	}
}

func TestSumValueTypeMismatch(t *testing.T) {
	for _, v := range []any{42, "head", Node{}, []int64{1}} {
		_, err := SumValue(v)
		if !errors.Is(err, ErrTypeMismatch) {
			t.Errorf("SumValue(%T) err = %v, want ErrTypeMismatch", v, err)
		}
		var tm *TypeMismatchError
		if !errors.As(err, &tm) {
			t.Errorf("SumValue(%T) should return *TypeMismatchError", v)
		}
	}
}

// ---------------------------------------------------------------------------
// Bounded traversal and folds
// ---------------------------------------------------------------------------

func TestSumBounded(t *testing.T) {
	head := FromSlice([]int64{1, 2, 3})

	got, err := SumBounded(head, 3)
	if err != nil || got != 6 {
		t.Errorf("SumBounded(limit 3) = %d, %v; want 6, nil", got, err)
	}

	_, err = SumBounded(head, 2)
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("SumBounded(limit 2) err = %v, want ErrLimitExceeded", err)
	}

	got, err = SumBounded(head, 0)
	if err != nil || got != 6 {
		t.Errorf("SumBounded(no limit) = %d, %v; want 6, nil", got, err)
	}

	got, err = SumBounded(nil, 1)
	if err != nil || got != 0 {
		t.Errorf("SumBounded(nil) = %d, %v; want 0, nil", got, err)
	}
}

func TestFold(t *testing.T) {
	head := FromSlice([]int64{3, -1, 4})

	product := Fold(head, int64(1), func(acc, v int64) int64 { return acc * v })
	if product != -12 {
		t.Errorf("product = %d, want -12", product)
	}

	hi := Fold(head, int64(math.MinInt64), func(acc, v int64) int64 {
		if v > acc {
			return v
		}
		return acc
	})
	if hi != 4 {
		t.Errorf("max = %d, want 4", hi)
	}

	if got := Fold(head, int64(0), func(acc, v int64) int64 { return acc + v }); got != Sum(head) {
		t.Errorf("Fold sum = %d, Sum = %d", got, Sum(head))
	}
}

func TestEachStopsEarly(t *testing.T) {
	head := FromSlice([]int64{1, 2, 3, 4})
	var seen []int64
	Each(head, func(v int64) bool {
		seen = append(seen, v)
		return v < 2
	})
	if len(seen) != 2 {
		t.Errorf("Each visited %v, want [1 2]", seen)
	}
}

func TestLen(t *testing.T) {
	if Len(nil) != 0 {
		t.Error("Len(nil) should be 0")
	}
	if got := Len(buildRange(17)); got != 17 {
		t.Errorf("Len = %d, want 17", got)
	}
}
