// Package env reads the daemon's configuration from the environment.
// Keys are looked up with the HELIX_ prefix first, then bare.
package env

import (
	"log"
	"os"
	"strconv"
	"time"
)

var envPrefixes = []string{"HELIX_", ""}

// SetPrefixes overrides the lookup prefixes, mainly for tests.
func SetPrefixes(prefixes ...string) {
	if len(prefixes) == 0 {
		envPrefixes = []string{""}
		return
	}
	envPrefixes = prefixes
}

func GetEnv[T any](key string, defaultValue T, parser func(string) (T, error)) T {
	var value string
	var ok bool
	for _, prefix := range envPrefixes {
		value, ok = os.LookupEnv(prefix + key)
		if ok && value != "" {
			break
		}
	}
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := parser(value)
	if err == nil {
		return parsed
	}
	log.Panicf("env %s: invalid %T value: %s", key, parsed, value)
	return defaultValue
}

func stringstring(s string) (string, error) {
	return s, nil
}

func GetEnvString(key string, defaultValue string) string {
	return GetEnv(key, defaultValue, stringstring)
}

func GetEnvBool(key string, defaultValue bool) bool {
	return GetEnv(key, defaultValue, strconv.ParseBool)
}

func GetEnvInt(key string, defaultValue int) int {
	return GetEnv(key, defaultValue, strconv.Atoi)
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return GetEnv(key, defaultValue, time.ParseDuration)
}
