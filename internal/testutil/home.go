// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// SetConfigHome points XDG_CONFIG_HOME at dir so user config lookups stay
// inside the test. It returns a cleanup function restoring the old value.
// Tests calling it must not run in parallel.
func SetConfigHome(t testing.TB, dir string) func() {
	t.Helper()
	return MustSetenv(t, "XDG_CONFIG_HOME", dir)
}
