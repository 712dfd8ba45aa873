package stream

import (
	"reflect"
	"testing"
)

func TestStream_DeliversInSubscriptionOrder(t *testing.T) {
	lp := NewLoop()
	st := New[string](lp)
	var got []string
	st.Subscribe(func(v string) { got = append(got, "a:"+v) })
	st.Subscribe(func(v string) { got = append(got, "b:"+v) })

	lp.Post(func() { st.Emit("x"); st.Emit("y") })
	lp.Stabilize()

	want := []string{"a:x", "b:x", "a:y", "b:y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStream_ClosedSubscriptionStopsReceiving(t *testing.T) {
	lp := NewLoop()
	st := New[int](lp)
	var got []int
	sub := st.Subscribe(func(v int) { got = append(got, v) })

	lp.Post(func() {
		st.Emit(1)
		sub.Close()
		st.Emit(2)
	})
	lp.Stabilize()

	if want := []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStream_SubscriberAddedDuringDeliveryMissesValue(t *testing.T) {
	lp := NewLoop()
	st := New[int](lp)
	var got []int
	st.Subscribe(func(v int) {
		if v == 1 {
			st.Subscribe(func(v int) { got = append(got, 100+v) })
		}
	})

	lp.Post(func() { st.Emit(1); st.Emit(2) })
	lp.Stabilize()

	if want := []int{102}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStream_RememberReplaysToLateSubscriber(t *testing.T) {
	lp := NewLoop()
	st := New[string](lp).Remember()
	var got []string

	lp.Post(func() {
		st.Emit("early")
		st.Subscribe(func(v string) { got = append(got, v) })
		st.Emit("late")
	})
	lp.Stabilize()

	want := []string{"early", "late"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if last, ok := st.Last(); !ok || last != "late" {
		t.Errorf("Last -> (%v, %v), want (late, true)", last, ok)
	}
}

func TestMap(t *testing.T) {
	lp := NewLoop()
	src := New[int](lp)
	dst := Map(src, func(v int) int { return v * 10 })
	var got []int
	dst.Subscribe(func(v int) { got = append(got, v) })

	lp.Post(func() { src.Emit(1); src.Emit(2) })
	lp.Stabilize()

	if want := []int{10, 20}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	lp := NewLoop()
	src := New[int](lp)
	dst := Filter(src, func(v int) bool { return v%2 == 0 })
	var got []int
	dst.Subscribe(func(v int) { got = append(got, v) })

	lp.Post(func() {
		for i := 1; i <= 5; i++ {
			src.Emit(i)
		}
	})
	lp.Stabilize()

	if want := []int{2, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMerge_FollowsEmissionOrder(t *testing.T) {
	lp := NewLoop()
	a := New[string](lp)
	b := New[string](lp)
	merged := Merge(lp, a, b)
	var got []string
	merged.Subscribe(func(v string) { got = append(got, v) })

	lp.Post(func() {
		a.Emit("a1")
		b.Emit("b1")
		a.Emit("a2")
	})
	lp.Stabilize()

	want := []string{"a1", "b1", "a2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFirst(t *testing.T) {
	lp := NewLoop()
	src := New[int](lp)
	dst := First(src)
	var got []int
	dst.Subscribe(func(v int) { got = append(got, v) })

	lp.Post(func() { src.Emit(1); src.Emit(2); src.Emit(3) })
	lp.Stabilize()

	if want := []int{1}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFirst_OnRememberedStreamWithValue(t *testing.T) {
	lp := NewLoop()
	src := New[int](lp).Remember()
	var got []int

	lp.Post(func() {
		src.Emit(7)
		// First consumes the replayed value right away; since the derived
		// stream remembers, a late subscriber still observes it.
		dst := First(src)
		dst.Subscribe(func(v int) { got = append(got, v) })
		src.Emit(8)
	})
	lp.Stabilize()

	if want := []int{7}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
