package cpp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_PutGetDelete(t *testing.T) {
	var m Map[int]

	m.Put("k", 1)
	v, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	m.Put("k", 2)
	v, _ = m.Get("k")
	assert.Equal(t, 2, v)

	m.Delete("k")
	_, ok = m.Get("k")
	assert.False(t, ok)
}

func TestMap_PrefixKeys(t *testing.T) {
	var m Map[string]
	m.Put2("foobar", 3, "short")

	v, ok := m.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, "short", v)

	v, ok = m.Get2("fooxyz", 3)
	assert.True(t, ok)
	assert.Equal(t, "short", v)

	_, ok = m.Get("foobar")
	assert.False(t, ok)
}

func TestMap_ChurnSurvivesRehash(t *testing.T) {
	var m Map[int]
	key := func(i int) string { return fmt.Sprintf("key %d", i) }

	for i := 0; i < 500; i++ {
		m.Put(key(i), i)
	}
	for i := 100; i < 200; i++ {
		m.Delete(key(i))
	}
	for i := 150; i < 160; i++ {
		m.Put(key(i), i)
	}
	for i := 600; i < 700; i++ {
		m.Put(key(i), i)
	}

	for i := 0; i < 100; i++ {
		v, ok := m.Get(key(i))
		assert.True(t, ok, key(i))
		assert.Equal(t, i, v)
	}
	for i := 100; i < 150; i++ {
		_, ok := m.Get(key(i))
		assert.False(t, ok, key(i))
	}
	for i := 150; i < 160; i++ {
		v, ok := m.Get(key(i))
		assert.True(t, ok, key(i))
		assert.Equal(t, i, v)
	}
	for i := 600; i < 700; i++ {
		v, ok := m.Get(key(i))
		assert.True(t, ok, key(i))
		assert.Equal(t, i, v)
	}
}

func TestMap_TombstoneReuse(t *testing.T) {
	var m Map[int]
	m.Put("a", 1)
	m.Delete("a")
	m.Put("a", 2)
	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestIntern_ReferenceEquality(t *testing.T) {
	a := Intern("some identifier")
	b := Intern("some identifier")
	c := Intern("another")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "some identifier", *a)
}
