package host

import (
	"container/heap"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

type timer struct {
	fn       goja.Callable
	args     []goja.Value
	deadline time.Duration
	interval time.Duration
	id       int64
	seq      uint64
	repeat   bool
	index    int
}

// timerQueue orders timers by deadline, then by arming order.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline != q[j].deadline {
		return q[i].deadline < q[j].deadline
	}
	return q[i].seq < q[j].seq
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

func (h *Host) installTimers() error {
	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"setTimeout":    h.setTimer(false),
		"setInterval":   h.setTimer(true),
		"clearTimeout":  h.clearTimer,
		"clearInterval": h.clearTimer,
	} {
		if err := h.vm.Set(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) setTimer(repeat bool) func(goja.FunctionCall) goja.Value {
	name := "setTimeout"
	if repeat {
		name = "setInterval"
	}
	return func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(h.vm.NewTypeError(name + " requires a function as first argument"))
		}

		// negative delays clamp to 0
		delay := max(time.Duration(call.Argument(1).ToInteger())*time.Millisecond, 0)

		var extra []goja.Value
		if len(call.Arguments) > 2 {
			extra = append(extra, call.Arguments[2:]...)
		}

		h.nextID++
		h.seq++
		t := &timer{
			fn:       fn,
			args:     extra,
			deadline: h.now + delay,
			interval: delay,
			id:       h.nextID,
			seq:      h.seq,
			repeat:   repeat,
		}
		h.timers[t.id] = t
		heap.Push(&h.queue, t)
		return h.vm.ToValue(t.id)
	}
}

func (h *Host) clearTimer(call goja.FunctionCall) goja.Value {
	id := call.Argument(0).ToInteger()
	if t, ok := h.timers[id]; ok {
		delete(h.timers, id)
		if t.index >= 0 {
			heap.Remove(&h.queue, t.index)
		}
	}
	return goja.Undefined()
}

// Advance moves the virtual clock forward by d, firing every timer that
// becomes due in deadline order. It returns the number of callbacks run.
func (h *Host) Advance(d time.Duration) int {
	target := h.now + d
	fired := 0
	for h.queue.Len() > 0 && h.queue[0].deadline <= target {
		t := heap.Pop(&h.queue).(*timer)
		h.now = t.deadline
		lateness := target - t.deadline

		if t.repeat {
			h.seq++
			t.seq = h.seq
			// zero-interval repeats still make progress
			t.deadline += max(t.interval, time.Millisecond)
			heap.Push(&h.queue, t)
		} else {
			delete(h.timers, t.id)
		}

		// hosts append their own trailing argument, here the lateness in ms
		args := append(append([]goja.Value(nil), t.args...), h.vm.ToValue(lateness.Milliseconds()))
		if _, err := t.fn(goja.Undefined(), args...); err != nil {
			h.logger.Warn("timer callback failed", zap.Int64("timer", t.id), zap.Error(err))
			if h.onError != nil {
				h.onError(err)
			}
		}
		fired++
	}
	h.now = target
	return fired
}

// Pending returns the number of armed timers.
func (h *Host) Pending() int {
	return len(h.timers)
}

// Now returns the virtual clock.
func (h *Host) Now() time.Duration {
	return h.now
}
