package dialect

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/universe"
)

const heredocMarker = "AORIST_EOF"

// ShellQuote wraps s in single quotes for POSIX shells.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellCommand renders code written in dialect kind as a shell command.
// Presto statements run through the presto CLI against the configured endpoint.
func ShellCommand(kind string, code string, endpoints universe.EndpointConfig) (string, error) {
	code = strings.TrimRight(code, "\n")
	switch kind {
	case constants.DialectBash:
		return code, nil
	case constants.DialectPython:
		return fmt.Sprintf("python3 - <<'%v'\n%v\n%v", heredocMarker, code, heredocMarker), nil
	case constants.DialectR:
		return "Rscript -e " + ShellQuote(code), nil
	case constants.DialectPresto:
		if args := PrestoArgs(endpoints); args != "" {
			return fmt.Sprintf("presto %v --execute %v", args, ShellQuote(code)), nil
		}
		return "presto --execute " + ShellQuote(code), nil
	}
	return "", fmt.Errorf("unknown dialect %q", kind)
}

// PrestoArgs renders the presto CLI connection flags for the configured endpoint, or "" without one.
func PrestoArgs(endpoints universe.EndpointConfig) string {
	p := endpoints.Presto
	if p == nil {
		return ""
	}
	port := p.HTTPPort
	if port == 0 {
		port = universe.DefaultPrestoHTTPPort
	}
	user := p.User
	if user == "" {
		user = universe.DefaultPrestoUser
	}
	return fmt.Sprintf("--server %v:%v --user %v", p.Server, port, ShellQuote(user))
}
