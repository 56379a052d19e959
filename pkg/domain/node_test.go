package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasSegmentPrefix(t *testing.T) {
	assert.True(t, HasSegmentPrefix("top.t.cyc", "top.t"))
	assert.True(t, HasSegmentPrefix("top.t", "top.t"))
	assert.True(t, HasSegmentPrefix("top", RootPath))
	assert.False(t, HasSegmentPrefix("top", "t"), "partial segment must not match")
	assert.False(t, HasSegmentPrefix("top.tt", "top.t"))
}

func TestSplitAndJoinPath(t *testing.T) {
	parent, name := SplitPath("top.t.cyc")
	assert.Equal(t, "top.t", parent)
	assert.Equal(t, "cyc", name)

	parent, name = SplitPath("top")
	assert.Equal(t, RootPath, parent)
	assert.Equal(t, "top", name)

	assert.Equal(t, "top", JoinPath(RootPath, "top"))
	assert.Equal(t, "top.t", JoinPath("top", "t"))
	assert.Nil(t, Segments(RootPath))
	assert.Equal(t, []string{"top", "t"}, Segments("top.t"))
}

func TestValidatePath(t *testing.T) {
	for _, bad := range []string{"", ".top", "top.", "top..t", "to p"} {
		err := ValidatePath(bad)
		assert.True(t, errors.Is(err, ErrInvalidPath), "path %q should be rejected", bad)
	}
	assert.NoError(t, ValidatePath("top.t.sub1a"))
}

func TestErrorsMatchSentinels(t *testing.T) {
	usage := &UsageError{Op: "dump", State: StateCreated}
	assert.ErrorIs(t, usage, ErrUsage)
	assert.Contains(t, usage.Error(), "created")

	ordering := &TimeOrderingError{Previous: 5, Got: 5}
	assert.ErrorIs(t, ordering, ErrTimeOrdering)

	cause := errors.New("disk full")
	sinkErr := &SinkError{Op: "write", Path: "simx.vcd", Err: cause}
	assert.ErrorIs(t, sinkErr, ErrSinkIO)
	assert.ErrorIs(t, sinkErr, cause)
}

func TestKind_Text(t *testing.T) {
	b, err := KindSignal.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "signal", string(b))

	var k Kind
	assert.NoError(t, k.UnmarshalText([]byte("scope")))
	assert.Equal(t, KindScope, k)
	assert.Error(t, k.UnmarshalText([]byte("wire")))
}
