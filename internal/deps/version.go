package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds how long a version probe may run; uvx in particular
// can stall while resolving its tool cache.
const versionTimeout = 5 * time.Second

// ProbeVersion runs binary with args and returns the first non-empty output
// line. Failures yield an empty string since version text is informational.
func ProbeVersion(binary string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary, args...).CombinedOutput() //nolint:gosec
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
