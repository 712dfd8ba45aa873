package stream

// Stream is a push-based broadcast of values of type T, living on a Loop.
// Emit and Subscribe must be called on the loop; delivery is synchronous and
// follows subscription order.
type Stream[T any] struct {
	lp       *Loop
	subs     []*Sub[T]
	remember bool
	has      bool
	last     T
}

// New creates a stream on the given loop.
func New[T any](lp *Loop) *Stream[T] {
	return &Stream[T]{lp: lp}
}

// Loop returns the loop the stream lives on.
func (st *Stream[T]) Loop() *Loop { return st.lp }

// Remember makes the stream replay its latest value to late subscribers, so
// that they observe it immediately instead of waiting for the next emission.
// It returns the receiver.
func (st *Stream[T]) Remember() *Stream[T] {
	st.remember = true
	return st
}

// Last returns the latest value seen by a remembering stream, and whether
// there has been one.
func (st *Stream[T]) Last() (T, bool) { return st.last, st.has }

// Sub represents an active subscription to a stream.
type Sub[T any] struct {
	f      func(T)
	closed bool
}

// Close stops the subscription. Values being delivered when Close is called
// are not redelivered; closing twice is a no-op.
func (s *Sub[T]) Close() { s.closed = true }

// Subscribe registers f to be called for every value emitted on the stream.
// If the stream remembers and has a latest value, f is called with it before
// Subscribe returns.
func (st *Stream[T]) Subscribe(f func(T)) *Sub[T] {
	sub := &Sub[T]{f: f}
	st.subs = append(st.subs, sub)
	if st.remember && st.has {
		f(st.last)
	}
	return sub
}

// Emit delivers v to all current subscribers, in subscription order.
// Subscribers added during delivery do not observe v.
func (st *Stream[T]) Emit(v T) {
	if st.remember {
		st.last, st.has = v, true
	}
	subs := st.subs
	anyClosed := false
	for _, sub := range subs {
		if sub.closed {
			anyClosed = true
			continue
		}
		sub.f(v)
	}
	if anyClosed {
		st.compact()
	}
}

func (st *Stream[T]) compact() {
	live := st.subs[:0]
	for _, sub := range st.subs {
		if !sub.closed {
			live = append(live, sub)
		}
	}
	st.subs = live
}

// Map derives a stream that applies f to every value of src.
func Map[A, B any](src *Stream[A], f func(A) B) *Stream[B] {
	out := New[B](src.lp)
	src.Subscribe(func(v A) { out.Emit(f(v)) })
	return out
}

// Filter derives a stream containing the values of src for which pred holds.
func Filter[T any](src *Stream[T], pred func(T) bool) *Stream[T] {
	out := New[T](src.lp)
	src.Subscribe(func(v T) {
		if pred(v) {
			out.Emit(v)
		}
	})
	return out
}

// Merge derives a stream carrying the values of all the given streams, which
// must live on lp. Delivery follows emission order across the sources.
func Merge[T any](lp *Loop, srcs ...*Stream[T]) *Stream[T] {
	out := New[T](lp)
	for _, src := range srcs {
		src.Subscribe(out.Emit)
	}
	return out
}

// First derives a stream that relays only the first value of src. The
// derived stream remembers, so the value is not lost on subscribers that
// attach after it was emitted.
func First[T any](src *Stream[T]) *Stream[T] {
	out := New[T](src.lp).Remember()
	done := false
	var sub *Sub[T]
	sub = src.Subscribe(func(v T) {
		if done {
			return
		}
		done = true
		out.Emit(v)
		if sub != nil {
			sub.Close()
		}
	})
	if done {
		sub.Close()
	}
	return out
}
