package history

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleHistory_WriteTo() {
	h := New(3)
	h.Append("ls\n")
	h.Append("cd /tmp\n")
	h.Append("pwd\n")
	h.Append("history\n")

	var buf bytes.Buffer
	h.WriteTo(&buf)
	fmt.Print(buf.String())

	// Output: [1] cd /tmp
	// [2] pwd
	// [3] history
}

func TestAppendUnderCapacity(t *testing.T) {
	h := New(10)
	h.Append("a")
	h.Append("b")

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, 10, h.Cap())
	assert.Equal(t, []string{"a", "b"}, h.Entries())
}

func TestEvictsOldestFirst(t *testing.T) {
	for _, capacity := range []int{1, 2, 10} {
		t.Run(fmt.Sprintf("cap-%d", capacity), func(t *testing.T) {
			h := New(capacity)
			var all []string
			for i := 0; i < capacity*3+1; i++ {
				line := fmt.Sprintf("line %d", i)
				all = append(all, line)
				h.Append(line)
			}

			assert.Equal(t, capacity, h.Len())
			assert.Equal(t, all[len(all)-capacity:], h.Entries())
		})
	}
}

func TestEntriesIsACopy(t *testing.T) {
	h := New(2)
	h.Append("a")

	entries := h.Entries()
	entries[0] = "mutated"

	assert.Equal(t, []string{"a"}, h.Entries())
}

func TestClear(t *testing.T) {
	h := New(2)
	h.Append("a")
	h.Clear()
	assert.Equal(t, 0, h.Len())

	h.Append("b")
	assert.Equal(t, []string{"b"}, h.Entries())
}

func TestDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New(0).Cap())
	assert.Equal(t, DefaultCapacity, New(-4).Cap())
}

func TestWriteToEmpty(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(3).WriteTo(&buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}

func TestRestore(t *testing.T) {
	h := New(5)
	h.Append("echo one")
	h.Append("echo two")

	data, err := h.MarshalJSON()
	require.NoError(t, err)

	restored, err := Restore(5, data)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), restored.Entries())

	smaller, err := Restore(1, data)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo two"}, smaller.Entries())

	unbounded, err := Restore(0, data)
	require.NoError(t, err)
	assert.Equal(t, h.Entries(), unbounded.Entries())

	_, err = Restore(5, []byte("not json"))
	assert.Error(t, err)
}
