package api_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-buf/api"
)

func TestErrorMatchesByCode(t *testing.T) {
	err := api.Errorf(api.ErrCodePoolExhausted, "group %d full", 3).WithContext("group", 3)
	assert.ErrorIs(t, err, api.ErrPoolExhausted)
	assert.NotErrorIs(t, err, api.ErrLimitExceeded)

	wrapped := fmt.Errorf("decode: %w", err)
	assert.ErrorIs(t, wrapped, api.ErrPoolExhausted)
	assert.Equal(t, api.ErrCodePoolExhausted, api.CodeOf(wrapped))
	assert.Contains(t, err.Error(), "group 3 full")
	assert.Contains(t, err.Error(), "context")
}

func TestErrorWrapsCause(t *testing.T) {
	cause := errors.New("ENOMEM")
	err := api.Errorf(api.ErrCodeAllocationFailed, "alloc").Wrap(cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, api.ErrAllocationFailed)
	assert.Equal(t, "alloc: ENOMEM", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, api.ErrCodeOK, api.CodeOf(nil))
	assert.Equal(t, api.ErrorCode(-1), api.CodeOf(errors.New("plain")))
	assert.Equal(t, "group busy", api.ErrCodeGroupBusy.String())
	assert.Equal(t, "code(77)", api.ErrorCode(77).String())
}

func TestHandleValid(t *testing.T) {
	assert.True(t, api.NewHandle(make([]byte, 4), api.KindHeap).Valid())
	assert.False(t, api.Handle{Fd: api.NoFd}.Valid())
	assert.True(t, api.Handle{Fd: 5, Size: 10}.Valid())
	assert.False(t, api.Handle{Data: make([]byte, 2), Fd: api.NoFd, Size: 10}.Valid())
	assert.True(t, api.BufferInfo{Flags: api.FlagExternal}.External())
	assert.False(t, api.BufferInfo{Size: 1}.External())
}
