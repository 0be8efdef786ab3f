package progress

import (
	"os"

	"github.com/mattn/go-isatty"
)

// TriState mirrors the CLI's --color / --progress-bar enums.
type TriState string

const (
	Auto   TriState = "auto"
	Never  TriState = "never"
	Always TriState = "always"
)

// ResolveTriState turns an {auto,never,always} flag value plus a TTY probe
// into a plain boolean, used for both --color and --progress-bar.
func ResolveTriState(mode TriState, f *os.File) bool {
	switch mode {
	case Always:
		return true
	case Never:
		return false
	default:
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
}
