package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/netrecon/netrecon/internal/config"
	"github.com/netrecon/netrecon/internal/engine"
	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/export"
	"github.com/netrecon/netrecon/internal/logging"
	"github.com/netrecon/netrecon/internal/metrics"
	"github.com/netrecon/netrecon/internal/ports"
)

var (
	scanPorts           string
	scanPortTimeout     time.Duration
	scanPingTimeout     time.Duration
	scanHostConcurrency int
	scanPortConcurrency int
	scanPing            bool
	scanSkipOffline     bool
	scanBanners         bool
	scanRateLimit       int
	scanDNSServer       string
	scanFormat          string
	scanOutput          string
	scanProgress        bool
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan <target>",
	Short: "Scan a target for live hosts and open ports",
	Long: `Scan a single host, a dash range, or a CIDR block for liveness and open
TCP ports. Results are printed as a table by default; JSON and CSV are
available for machine consumption.

Interrupting the scan (Ctrl-C) cancels in-flight probes and prints
whatever results completed before cancellation.`,
	Example: `  netrecon scan 192.168.1.0/24
  netrecon scan 10.0.0.10-50 --ports 22,80,443
  netrecon scan example.com --ports 1-1024 --banners
  netrecon scan 192.168.1.1 --format json --output result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanPorts, "ports", "p", "", "ports to probe: '22,80,443' or '1-1024' (default: common ports)")
	scanCmd.Flags().DurationVar(&scanPortTimeout, "port-timeout", 0, "timeout per TCP connect attempt")
	scanCmd.Flags().DurationVar(&scanPingTimeout, "ping-timeout", 0, "timeout per liveness probe")
	scanCmd.Flags().IntVar(&scanHostConcurrency, "host-concurrency", 0, "max hosts scanned in parallel")
	scanCmd.Flags().IntVar(&scanPortConcurrency, "port-concurrency", 0, "max ports probed in parallel per host")
	scanCmd.Flags().BoolVar(&scanPing, "ping", true, "check liveness before port probing")
	scanCmd.Flags().BoolVar(&scanSkipOffline, "skip-offline", false, "do not probe ports on hosts that fail the liveness check")
	scanCmd.Flags().BoolVar(&scanBanners, "banners", false, "grab service banners from open ports")
	scanCmd.Flags().IntVar(&scanRateLimit, "rate-limit", 0, "max host scans per second (0 = unlimited)")
	scanCmd.Flags().StringVar(&scanDNSServer, "dns-server", "", "explicit DNS server for hostname resolution")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "output format: table, json, csv")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write results to file instead of stdout")
	scanCmd.Flags().BoolVar(&scanProgress, "progress", true, "print progress while scanning")
}

func runScan(cmd *cobra.Command, args []string) error {
	targetExpr := strings.TrimSpace(args[0])

	if err := validatePortSpec(scanPorts); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(cmd.Flags(), cfg)

	opts, err := cfg.ToOptions()
	if err != nil {
		return err
	}

	writer, err := export.New(scanFormat)
	if err != nil {
		return err
	}

	eng, err := engine.New(opts, logging.Default())
	if err != nil {
		return err
	}

	// Progress goes to stderr so it never corrupts piped output.
	if scanProgress {
		eng.OnProgress = func(p engine.Progress) {
			fmt.Fprintf(os.Stderr, "\r[%3.0f%%] %d/%d hosts (last: %s)        ",
				p.Percent, p.ScannedHosts, p.TotalHosts, p.CurrentHost)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.SetEnabled(cfg.Metrics.Enabled)
	if cfg.Metrics.Enabled {
		go metrics.GetGlobalMetrics().StartPeriodicUpdates(ctx, 5*time.Second)
	}

	summary, err := eng.Scan(ctx, targetExpr)
	if scanProgress {
		fmt.Fprintln(os.Stderr)
	}
	logging.Debug("scan finished", "state", string(eng.State()))

	cancelled := errors.IsCanceled(err)
	if err != nil && !cancelled {
		metrics.GetGlobalMetrics().IncrementScanErrors(string(errors.GetCode(err)))
		logging.Default().ErrorScan("Scan failed", targetExpr, err)
		return err
	}
	if cancelled {
		fmt.Fprintln(os.Stderr, "Scan cancelled, printing partial results")
	}

	// The output file must be closed before the cancelled exit below.
	if err := writeSummary(writer, summary); err != nil {
		return err
	}

	if cancelled {
		// Non-zero exit so scripts can tell a cancelled scan apart.
		os.Exit(2)
	}
	return nil
}

// writeSummary renders the summary to --output or stdout. The file handle
// never outlives this function.
func writeSummary(writer export.Writer, summary *engine.Summary) error {
	out := os.Stdout
	if scanOutput != "" {
		file, err := os.Create(scanOutput)
		if err != nil {
			return errors.WrapScanError(errors.CodeScanFailed, "failed to create output file", err)
		}
		defer file.Close()
		out = file
	}

	if err := writer.Write(out, summary); err != nil {
		return errors.WrapScanError(errors.CodeScanFailed, "failed to write results", err)
	}
	return nil
}

// applyScanFlags overlays explicitly-set command flags onto the config.
func applyScanFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("ports") {
		cfg.Scan.Ports = scanPorts
	}
	if flags.Changed("port-timeout") {
		cfg.Scan.PortTimeout = scanPortTimeout
	}
	if flags.Changed("ping-timeout") {
		cfg.Scan.PingTimeout = scanPingTimeout
	}
	if flags.Changed("host-concurrency") {
		cfg.Scan.HostConcurrency = scanHostConcurrency
	}
	if flags.Changed("port-concurrency") {
		cfg.Scan.PortConcurrency = scanPortConcurrency
	}
	if flags.Changed("ping") {
		cfg.Scan.PingFirst = scanPing
	}
	if flags.Changed("skip-offline") {
		cfg.Scan.SkipOffline = scanSkipOffline
	}
	if flags.Changed("banners") {
		cfg.Scan.GrabBanners = scanBanners
	}
	if flags.Changed("rate-limit") {
		cfg.Scan.RateLimit = scanRateLimit
	}
	if flags.Changed("dns-server") {
		cfg.Resolver.Server = scanDNSServer
	}
}

// validatePortSpec rejects a port expression that yields zero usable ports.
func validatePortSpec(spec string) error {
	if spec == "" {
		return nil
	}
	_, err := ports.Parse(spec)
	return err
}
