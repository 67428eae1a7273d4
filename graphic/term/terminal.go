package term

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// normalizeTerminal works around terminal settings that Termbox cannot
// handle.
//
// Returns a function that restores the previous settings.
func normalizeTerminal() (func(), error) {
	prevTERMINFO, hadTERMINFO := os.LookupEnv("TERMINFO")

	if strings.HasPrefix(os.Getenv("TERM"), "tmux") {
		// Some combinations of TERMINFO with TERM in some Tmux value
		// will cause Termbox to fail.
		if err := os.Unsetenv("TERMINFO"); err != nil {
			return nil, errors.Wrap(err, "failed to unset TERMINFO")
		}
	}

	restore := func() {
		if !hadTERMINFO {
			return
		}

		if err := os.Setenv("TERMINFO", prevTERMINFO); err != nil {
			panic(err)
		}
	}

	return restore, nil
}
