// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetHomeDir sets the platform's home directory variable and returns a
// cleanup function restoring it.
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "USERPROFILE", dir)
	default:
		return MustSetenv(t, "HOME", dir)
	}
}

// SetConfigDir points the user config directory at dir. On Linux and the
// BSDs this is XDG_CONFIG_HOME; elsewhere the home directory is used.
func SetConfigDir(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "APPDATA", dir)
	case "darwin":
		return SetHomeDir(t, dir)
	default:
		return MustSetenv(t, "XDG_CONFIG_HOME", dir)
	}
}
