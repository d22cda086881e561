package cli

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "photosync-cli-test-")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = os.RemoveAll(tempHome)
	}()

	setEnvOrPanic := func(key, value string) {
		if err := os.Setenv(key, value); err != nil {
			panic(err)
		}
	}

	// Isolate the test run from the real user's config and backups.
	setEnvOrPanic("HOME", tempHome)
	setEnvOrPanic("XDG_CONFIG_HOME", "")

	os.Exit(m.Run())
}
