// toolchange-organizer rewrites a multi-extruder G-code file so that each
// layer's moves are grouped per tool, cutting the number of tool swaps.
//
// Usage:
//
//	toolchange-organizer [flags] <input.gcode>
//
// The result is written next to the input with a ".fixed" suffix unless
// -o or --suffix say otherwise.
//
// Examples:
//
//	# Reorder with the defaults (4 extruders)
//	toolchange-organizer part.gcode
//
//	# Two extruders, JSON logs, Prometheus textfile for node_exporter
//	toolchange-organizer --extruders 2 --log-format json \
//	    --metrics-file /var/lib/node_exporter/toolchange.prom part.gcode
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cmd := newRootCmd(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(exitCode(err))
	}
}
