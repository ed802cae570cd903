package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_ReplaysCurrentValue(t *testing.T) {
	s := NewSubject("a")
	s.Next("b")

	var got []string
	s.Subscribe(func(v string) { got = append(got, v) })
	s.Next("c")

	assert.Equal(t, []string{"b", "c"}, got)
	assert.Equal(t, "c", s.Value())
}

func TestSubject_Unsubscribe(t *testing.T) {
	s := NewSubject(0)
	var first, second []int

	unsubscribe := s.Subscribe(func(v int) { first = append(first, v) })
	s.Subscribe(func(v int) { second = append(second, v) })

	s.Next(1)
	unsubscribe()
	unsubscribe()
	s.Next(2)

	assert.Equal(t, []int{0, 1}, first)
	assert.Equal(t, []int{0, 1, 2}, second)
}

func TestSubject_HandlerSeesStoredValue(t *testing.T) {
	s := NewSubject[*string](nil)
	name := "john"

	var observed *string
	s.Subscribe(func(v *string) {
		if v != nil {
			observed = s.Value()
		}
	})
	s.Next(&name)

	assert.Same(t, &name, observed)
}

func TestSubject_PanickingHandlerIsIsolated(t *testing.T) {
	s := NewSubject(0)
	var got []int
	s.Subscribe(func(v int) {
		if v == 2 {
			panic("bad subscriber")
		}
	})
	s.Subscribe(func(v int) { got = append(got, v) })

	assert.NotPanics(t, func() { s.Next(2) })
	assert.Equal(t, []int{0, 2}, got)
	assert.Equal(t, 2, s.Value())
}

func TestSubject_NestedNextSkipsStaleValue(t *testing.T) {
	s := NewSubject("")
	var got []string
	s.Subscribe(func(v string) {
		if v == "login" {
			s.Next("logout")
		}
	})
	s.Subscribe(func(v string) { got = append(got, v) })

	s.Next("login")

	assert.Equal(t, []string{"", "logout"}, got)
	assert.Equal(t, "logout", s.Value())
}
