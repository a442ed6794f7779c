package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr), "expected PanicError, got %T", err)
	assert.Equal(t, "TestOperation", panicErr.Operation)
	assert.Equal(t, "test panic message", panicErr.PanicValue)
	assert.NotEmpty(t, panicErr.StackTrace)
	assert.Equal(t, "panic in TestOperation: test panic message", panicErr.Error())
	assert.True(t, strings.Contains(panicErr.String(), "Stack trace:"))
}

func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	assert.NoError(t, testFunc())
}

func TestRecover_KeepsExistingError(t *testing.T) {
	original := NewValueError("Fit", "bad input")
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = original
		panic("late panic")
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in TestOperation: late panic")

	var valueErr *ValueError
	assert.True(t, As(err, &valueErr), "original error should stay reachable")
}

func TestRecover_IndexOutOfRange(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "Index")
		var s []int
		_ = s[3]
		return nil
	}

	err := testFunc()
	require.Error(t, err)
	assert.Contains(t, fmt.Sprint(err), "index out of range")
}
