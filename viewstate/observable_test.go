package viewstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObservableGetSet(t *testing.T) {
	o := NewObservable(10)
	assert.Equal(t, 10, o.Get())

	o.Set(20)
	assert.Equal(t, 20, o.Get())
}

func TestSubscribeReceivesCurrentValueImmediately(t *testing.T) {
	o := NewObservable("initial")

	var seen []string
	unsub := o.Subscribe(func(v string) { seen = append(seen, v) })
	defer unsub()

	assert.Equal(t, []string{"initial"}, seen)
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	o := NewObservable(0)

	var seen []int
	unsub := o.Subscribe(func(v int) { seen = append(seen, v) })
	defer unsub()

	o.Set(1)
	o.Set(2)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestUnsubscribeStopsUpdates(t *testing.T) {
	o := NewObservable(0)

	var seen []int
	unsub := o.Subscribe(func(v int) { seen = append(seen, v) })

	o.Set(1)
	unsub()
	o.Set(2)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestMultipleSubscribers(t *testing.T) {
	o := NewObservable("a")

	var first, second []string
	defer o.Subscribe(func(v string) { first = append(first, v) })()
	defer o.Subscribe(func(v string) { second = append(second, v) })()

	o.Set("b")
	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"a", "b"}, second)
}
