package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_BindAndEmit(t *testing.T) {
	bus := NewBus()

	var got []any
	bus.Bind(AuthStatusChange, func(payload any) {
		got = append(got, payload)
	})

	bus.Emit(AuthStatusChange, "authorized")
	bus.Emit(AuthStatusChange, "unauthorized")

	require.Len(t, got, 2)
	assert.Equal(t, "authorized", got[0])
	assert.Equal(t, "unauthorized", got[1])
}

func TestBus_InvocationOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.Bind(AuthStatusChange, func(any) { order = append(order, 1) })
	bus.Bind(AuthStatusChange, func(any) { order = append(order, 2) })
	bus.Bind(AuthStatusChange, func(any) { order = append(order, 3) })

	bus.Emit(AuthStatusChange, nil)

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_SameHandlerBoundTwiceFiresTwice(t *testing.T) {
	bus := NewBus()

	count := 0
	handler := func(any) { count++ }
	bus.Bind(AuthStatusChange, handler)
	bus.Bind(AuthStatusChange, handler)

	bus.Emit(AuthStatusChange, nil)

	assert.Equal(t, 2, count)
}

func TestBus_Unbind(t *testing.T) {
	bus := NewBus()

	count := 0
	binding := bus.Bind(AuthStatusChange, func(any) { count++ })

	bus.Emit(AuthStatusChange, nil)
	bus.Unbind(binding)
	bus.Emit(AuthStatusChange, nil)

	assert.Equal(t, 1, count, "handler should only receive emissions while bound")
}

func TestBus_UnbindIsIdempotent(t *testing.T) {
	bus := NewBus()

	binding := bus.Bind(AuthStatusChange, func(any) {})
	bus.Unbind(binding)

	assert.NotPanics(t, func() {
		bus.Unbind(binding)
		bus.Unbind(nil)
	})
}

func TestBus_UnbindRemovesOnlyThatBinding(t *testing.T) {
	bus := NewBus()

	count := 0
	handler := func(any) { count++ }
	first := bus.Bind(AuthStatusChange, handler)
	bus.Bind(AuthStatusChange, handler)

	bus.Unbind(first)
	bus.Emit(AuthStatusChange, nil)

	assert.Equal(t, 1, count)
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	var reached bool
	bus.Bind(AuthStatusChange, func(any) { panic("broken listener") })
	bus.Bind(AuthStatusChange, func(any) { reached = true })

	require.NotPanics(t, func() {
		bus.Emit(AuthStatusChange, nil)
	})
	assert.True(t, reached, "handlers after a panicking one must still run")
}

func TestBus_EmitWithNoBindings(t *testing.T) {
	bus := NewBus()

	assert.NotPanics(t, func() {
		bus.Emit(AuthStatusChange, "payload")
	})
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "auth:statusChange", AuthStatusChange.String())
	assert.Equal(t, "unknown", Event(99).String())
}
