package events_test

import (
	"testing"

	"github.com/martory/go-tenant-session/events"
	"github.com/martory/go-tenant-session/stores"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPublish_RegistrationOrder(t *testing.T) {
	bus := events.NewBus()
	var order []int
	for i := 1; i <= 3; i++ {
		bus.SubscribeFunc(func(events.StoreChanged) { order = append(order, i) })
	}

	bus.Publish(events.StoreChanged{Store: stores.Store{ID: 7}})

	require.Equal(t, []int{1, 2, 3}, order)
}

func TestPublish_FailingSubscriberDoesNotBreakOthers(t *testing.T) {
	tests := []struct {
		name   string
		second events.Handler
	}{
		{
			name:   "panics",
			second: func(events.StoreChanged) error { panic("boom") },
		},
		{
			name:   "returns error",
			second: func(events.StoreChanged) error { return errors.New("boom") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewBus()
			var got []int64
			bus.SubscribeFunc(func(ev events.StoreChanged) { got = append(got, ev.Store.ID) })
			bus.Subscribe(tt.second)
			bus.SubscribeFunc(func(ev events.StoreChanged) { got = append(got, ev.Store.ID*10) })

			require.NotPanics(t, func() {
				bus.Publish(events.StoreChanged{Store: stores.Store{ID: 7}})
			})
			require.Equal(t, []int64{7, 70}, got)
		})
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	calls := 0
	unsubscribe := bus.SubscribeFunc(func(events.StoreChanged) { calls++ })
	require.Equal(t, 1, bus.Len())

	bus.Publish(events.StoreChanged{})
	unsubscribe()
	unsubscribe()
	bus.Publish(events.StoreChanged{})

	require.Equal(t, 1, calls)
	require.Zero(t, bus.Len())
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	bus := events.NewBus()
	var got []string
	var unsubscribeLast func()

	bus.SubscribeFunc(func(events.StoreChanged) {
		got = append(got, "first")
		unsubscribeLast()
	})
	unsubscribeLast = bus.SubscribeFunc(func(events.StoreChanged) { got = append(got, "last") })

	bus.Publish(events.StoreChanged{})
	bus.Publish(events.StoreChanged{})

	require.Equal(t, []string{"first", "first"}, got)
}

func TestSubscribeDuringDispatch(t *testing.T) {
	bus := events.NewBus()
	late := 0
	bus.SubscribeFunc(func(events.StoreChanged) {
		bus.SubscribeFunc(func(events.StoreChanged) { late++ })
	})

	bus.Publish(events.StoreChanged{})
	require.Zero(t, late)
	require.Equal(t, 2, bus.Len())
}
