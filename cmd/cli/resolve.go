package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netrecon/netrecon/internal/target"
)

var resolveCount bool

// resolveCmd expands a target expression without scanning anything, which
// is useful for previewing how large a scan would be.
var resolveCmd = &cobra.Command{
	Use:   "resolve <target>",
	Short: "Expand a target expression into the hosts it would scan",
	Example: `  netrecon resolve 192.168.1.0/28
  netrecon resolve 10.0.0.250-260
  netrecon resolve example.com --count`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().BoolVar(&resolveCount, "count", false, "print only the number of hosts")
}

func runResolve(cmd *cobra.Command, args []string) error {
	hosts := target.Resolve(strings.TrimSpace(args[0]))

	if resolveCount {
		fmt.Fprintln(cmd.OutOrStdout(), len(hosts))
		return nil
	}

	for _, host := range hosts {
		fmt.Fprintln(cmd.OutOrStdout(), host)
	}
	return nil
}
