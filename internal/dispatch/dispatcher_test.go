package dispatch

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestDispatcher_RegistrationOrder(t *testing.T) {
	d := NewDispatcher(nil)

	var calls []int
	for i := 0; i < 5; i++ {
		i := i
		d.On(EventMarketUpdate, func(json.RawMessage) {
			calls = append(calls, i)
		})
	}

	d.Dispatch(EventMarketUpdate, json.RawMessage(`{}`))

	if len(calls) != 5 {
		t.Fatalf("got %d calls, want 5", len(calls))
	}
	for i, got := range calls {
		if got != i {
			t.Errorf("call %d was handler %d, want %d", i, got, i)
		}
	}
}

func TestDispatcher_KindsAreIndependent(t *testing.T) {
	d := NewDispatcher(nil)

	var market, balance int
	d.On(EventMarketUpdate, func(json.RawMessage) { market++ })
	d.On(EventBalanceUpdate, func(json.RawMessage) { balance++ })

	d.Dispatch(EventMarketUpdate, nil)

	if market != 1 {
		t.Errorf("market handler calls = %d, want 1", market)
	}
	if balance != 0 {
		t.Errorf("balance handler calls = %d, want 0", balance)
	}
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher(nil)

	var first, second int
	unsub := d.On(EventOrderCreated, func(json.RawMessage) { first++ })
	d.On(EventOrderCreated, func(json.RawMessage) { second++ })

	d.Dispatch(EventOrderCreated, nil)
	unsub()
	d.Dispatch(EventOrderCreated, nil)

	if first != 1 {
		t.Errorf("unsubscribed handler calls = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining handler calls = %d, want 2", second)
	}
	if got := d.HandlerCount(EventOrderCreated); got != 1 {
		t.Errorf("HandlerCount = %d, want 1", got)
	}
}

func TestDispatcher_UnsubscribeIdempotent(t *testing.T) {
	d := NewDispatcher(nil)

	unsub := d.On(EventRankingUpdate, func(json.RawMessage) {})
	d.On(EventRankingUpdate, func(json.RawMessage) {})

	unsub()
	unsub()

	if got := d.HandlerCount(EventRankingUpdate); got != 1 {
		t.Errorf("HandlerCount = %d, want 1", got)
	}
}

func TestDispatcher_NoReplay(t *testing.T) {
	d := NewDispatcher(nil)

	d.Dispatch(EventBalanceUpdate, json.RawMessage(`{"usdBalance":1000}`))

	var called bool
	d.On(EventBalanceUpdate, func(json.RawMessage) { called = true })

	if called {
		t.Error("handler registered after dispatch must not see past events")
	}
}

func TestDispatcher_PanicIsolation(t *testing.T) {
	d := NewDispatcher(nil)

	var before, after int
	d.On(EventMarketUpdate, func(json.RawMessage) { before++ })
	d.On(EventMarketUpdate, func(json.RawMessage) { panic("handler bug") })
	d.On(EventMarketUpdate, func(json.RawMessage) { after++ })

	d.Dispatch(EventMarketUpdate, nil)
	d.Dispatch(EventMarketUpdate, nil)

	if before != 2 || after != 2 {
		t.Errorf("neighbor calls = %d/%d, want 2/2 despite panicking handler", before, after)
	}
}

func TestDispatcher_UnsubscribeDuringDispatch(t *testing.T) {
	d := NewDispatcher(nil)

	var calls []string
	var unsubThird func()

	d.On(EventMarketUpdate, func(json.RawMessage) {
		calls = append(calls, "first")
		// Removing a later handler mid-pass must not affect this pass.
		unsubThird()
	})
	d.On(EventMarketUpdate, func(json.RawMessage) { calls = append(calls, "second") })
	unsubThird = d.On(EventMarketUpdate, func(json.RawMessage) { calls = append(calls, "third") })

	d.Dispatch(EventMarketUpdate, nil)

	want := []string{"first", "second", "third"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}

	// The next pass runs without the removed handler.
	calls = nil
	d.Dispatch(EventMarketUpdate, nil)
	if len(calls) != 2 {
		t.Errorf("second pass calls = %v, want first and second only", calls)
	}
}

// Property: a dispatched event reaches exactly the handlers subscribed
// at the moment of delivery, each exactly once, in registration order.
func TestDispatcher_SubscriberSetAtDelivery(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("delivery matches the live subscriber set", prop.ForAll(
		func(total int, removeMask int) bool {
			d := NewDispatcher(nil)

			counts := make([]int, total)
			unsubs := make([]func(), total)
			var order []int
			for i := 0; i < total; i++ {
				i := i
				unsubs[i] = d.On(EventRankingUpdate, func(json.RawMessage) {
					counts[i]++
					order = append(order, i)
				})
			}

			// Unsubscribe an arbitrary subset before delivering.
			for i := 0; i < total; i++ {
				if removeMask&(1<<i) != 0 {
					unsubs[i]()
				}
			}

			d.Dispatch(EventRankingUpdate, nil)

			prev := -1
			for i := 0; i < total; i++ {
				removed := removeMask&(1<<i) != 0
				if removed && counts[i] != 0 {
					return false
				}
				if !removed && counts[i] != 1 {
					return false
				}
			}
			for _, i := range order {
				if i <= prev {
					return false
				}
				prev = i
			}
			return true
		},
		gen.IntRange(1, 12),
		gen.IntRange(0, 1<<12-1),
	))

	properties.TestingRun(t)
}

// Property: unsubscribing an arbitrary handler from inside another
// handler never skips or double-invokes anyone in the running pass.
func TestDispatcher_UnsubscribeMidPassProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("mid-pass unsubscribe keeps the pass intact", prop.ForAll(
		func(total, actor, target int) bool {
			actor = actor % total
			target = target % total

			d := NewDispatcher(nil)
			counts := make([]int, total)
			unsubs := make([]func(), total)
			for i := 0; i < total; i++ {
				i := i
				unsubs[i] = d.On(EventMarketUpdate, func(json.RawMessage) {
					counts[i]++
					if i == actor {
						unsubs[target]()
					}
				})
			}

			d.Dispatch(EventMarketUpdate, nil)

			// The pass iterates its snapshot: everyone runs exactly once.
			for i := 0; i < total; i++ {
				if counts[i] != 1 {
					return false
				}
			}

			// The next pass excludes the removed handler.
			d.Dispatch(EventMarketUpdate, nil)
			for i := 0; i < total; i++ {
				want := 2
				if i == target {
					want = 1
				}
				if counts[i] != want {
					return false
				}
			}
			return true
		},
		gen.IntRange(2, 10),
		gen.IntRange(0, 9),
		gen.IntRange(0, 9),
	))

	properties.TestingRun(t)
}

func BenchmarkDispatch(b *testing.B) {
	d := NewDispatcher(nil)
	for i := 0; i < 8; i++ {
		d.On(EventMarketUpdate, func(json.RawMessage) {})
	}
	payload := json.RawMessage(fmt.Sprintf(`{"bestBuyRate":%f}`, 3.55))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Dispatch(EventMarketUpdate, payload)
	}
}
