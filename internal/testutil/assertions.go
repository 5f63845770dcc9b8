package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that every fragment appears on a single log line.
func AssertLogged(t *testing.T, buf *SafeBuffer, fragments ...string) {
	t.Helper()

	for _, line := range strings.Split(buf.String(), "\n") {
		matched := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				matched = false
				break
			}
		}
		if matched && line != "" {
			return
		}
	}
	require.Failf(t, "log line not found", "no log line contains all of %q\n--- log ---\n%s", fragments, buf.String())
}
