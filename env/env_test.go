package env

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var originalPrefixes = envPrefixes

func cleanup() {
	envPrefixes = originalPrefixes
	os.Unsetenv("STRING_VAR")
	os.Unsetenv("HELIX_STRING_VAR")
	os.Unsetenv("BOOL_VAR")
	os.Unsetenv("INT_VAR")
	os.Unsetenv("DURATION_VAR")
}

func TestSetPrefixes(t *testing.T) {
	t.Cleanup(cleanup)

	SetPrefixes("TEST_", "APP_")
	assert.Equal(t, []string{"TEST_", "APP_"}, envPrefixes)

	SetPrefixes()
	assert.Equal(t, []string{""}, envPrefixes)
}

func TestGetEnvString(t *testing.T) {
	t.Cleanup(cleanup)

	key := "STRING_VAR"
	assert.Equal(t, "default", GetEnvString(key, "default"))

	// prefixed key wins over bare
	os.Setenv(key, "bare")
	os.Setenv("HELIX_"+key, "prefixed")
	assert.Equal(t, "prefixed", GetEnvString(key, "default"))

	os.Unsetenv("HELIX_" + key)
	assert.Equal(t, "bare", GetEnvString(key, "default"))

	// empty value falls back to default
	os.Setenv(key, "")
	assert.Equal(t, "default", GetEnvString(key, "default"))
}

func TestGetEnvBool(t *testing.T) {
	t.Cleanup(cleanup)

	key := "BOOL_VAR"
	assert.False(t, GetEnvBool(key, false))

	os.Setenv(key, "true")
	assert.True(t, GetEnvBool(key, false))

	os.Setenv(key, "garbage")
	assert.Panics(t, func() { GetEnvBool(key, false) })
}

func TestGetEnvInt(t *testing.T) {
	t.Cleanup(cleanup)

	key := "INT_VAR"
	assert.Equal(t, 42, GetEnvInt(key, 42))

	os.Setenv(key, "7")
	assert.Equal(t, 7, GetEnvInt(key, 42))
}

func TestGetEnvDuration(t *testing.T) {
	t.Cleanup(cleanup)

	key := "DURATION_VAR"
	assert.Equal(t, time.Minute, GetEnvDuration(key, time.Minute))

	os.Setenv(key, "30s")
	assert.Equal(t, 30*time.Second, GetEnvDuration(key, time.Minute))
}
