package vsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibilityState(t *testing.T) {
	x := NewVisibilityState(true)
	assert.True(t, x.IsVisible())

	var got []string
	removeA := x.OnVisibilityChanged(func() { got = append(got, "a") })
	removeB := x.OnVisibilityChanged(func() { got = append(got, "b") })
	assert.Equal(t, 2, x.Handlers())

	x.Set(true)
	assert.Empty(t, got, "no change, no notification")

	x.Set(false)
	assert.False(t, x.IsVisible())
	assert.Equal(t, []string{"a", "b"}, got)

	removeA()
	removeA()
	assert.Equal(t, 1, x.Handlers())

	x.Set(true)
	assert.Equal(t, []string{"a", "b", "b"}, got)

	removeB()
	x.Set(false)
	assert.Equal(t, 0, x.Handlers())
	assert.Len(t, got, 3)
}

func TestVisibilityState_handlerObservesNewValue(t *testing.T) {
	x := NewVisibilityState(false)
	var seen []bool
	x.OnVisibilityChanged(func() { seen = append(seen, x.IsVisible()) })
	x.Set(true)
	x.Set(false)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestVisibilityState_removeDuringNotification(t *testing.T) {
	x := NewVisibilityState(false)
	var calls int
	var remove func()
	remove = x.OnVisibilityChanged(func() {
		calls++
		remove()
	})
	x.OnVisibilityChanged(func() { calls++ })

	x.Set(true)
	assert.Equal(t, 2, calls, "snapshot is notified in full")
	x.Set(false)
	assert.Equal(t, 3, calls)
}

func TestVisibilityState_nilHandler(t *testing.T) {
	assert.Panics(t, func() { NewVisibilityState(true).OnVisibilityChanged(nil) })
}
