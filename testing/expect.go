package expect

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var isTest = strings.HasSuffix(os.Args[0], ".test")

func init() {
	if isTest {
		// force verbose output
		os.Args = append([]string{os.Args[0], "-test.v"}, os.Args[1:]...)
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

func Must[Result any](r Result, err error) Result {
	if err != nil {
		panic(err)
	}
	return r
}

var (
	NoError  = require.NoError
	HasError = require.Error
	True     = require.True
	False    = require.False
	Nil      = require.Nil
	NotNil   = require.NotNil
	Empty    = require.Empty
	NotEmpty = require.NotEmpty
)

func ErrorIs(t *testing.T, expected error, err error, msgAndArgs ...any) {
	t.Helper()
	require.ErrorIs(t, err, expected, msgAndArgs...)
}

func Equal[T any](t *testing.T, got T, want T, msgAndArgs ...any) {
	t.Helper()
	require.EqualValues(t, want, got, msgAndArgs...)
}

func NotEqual[T any](t *testing.T, got T, want T, msgAndArgs ...any) {
	t.Helper()
	require.NotEqual(t, want, got, msgAndArgs...)
}

func StringsContain(t *testing.T, got string, want string, msgAndArgs ...any) {
	t.Helper()
	require.Contains(t, got, want, msgAndArgs...)
}

func StringsNotContain(t *testing.T, got string, want string, msgAndArgs ...any) {
	t.Helper()
	require.NotContains(t, got, want, msgAndArgs...)
}
