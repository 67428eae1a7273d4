// Package all registers every telemetry backend.
package all

import (
	_ "github.com/noriah/teletrace/telemetry/replay"
	_ "github.com/noriah/teletrace/telemetry/synthetic"
)
