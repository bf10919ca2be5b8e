// netrecon is a concurrent network reconnaissance tool. It resolves target
// expressions into hosts, checks liveness, probes TCP ports, and optionally
// grabs service banners.
package main

import (
	"github.com/netrecon/netrecon/cmd/cli"
)

// Build information - set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
