package main

import (
	"fmt"
	"os"

	"github.com/nao1215/aiblockfeed/internal/config"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Running it without a subcommand
// performs one build of the feed.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aiblockfeed",
		Short: "Build DNS and proxy blocklists of generative-AI domains",
		Long: `aiblockfeed harvests candidate domains from AI tool directories,
certificate-transparency logs and GitHub topics, reduces them to registrable
domains, keeps the ones that resolve and score as AI services, and writes the
result in several blocklist formats.

Input lists are read from the data directory:
  seed.txt       domains that are always considered (required)
  allowlist.txt  domains that are never blocked
  denylist.txt   domains that are always blocked

Output files are written to the output directory:
  domains.txt, rpz.zone, pi-hole.txt, pfblockerng.txt, squid_acl.conf,
  defender_indicators.csv

Examples:
  # Build with defaults (./data -> ./output)
  aiblockfeed

  # Use a specific resolver and more workers
  aiblockfeed --resolver 9.9.9.9 -w 32

  # Write a Markdown run report and a Prometheus textfile
  aiblockfeed -m --report-file report.md --metrics`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		RunE:          runRootCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Input and output
	cmd.Flags().StringP("data-dir", "d", config.DefaultDataDir,
		"Directory containing seed.txt, allowlist.txt and denylist.txt")
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory the feed files are written to (created if missing)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .aiblockfeed.yaml in current or XDG config directory)")

	// Resolution behavior
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of domains verified and scored concurrently")
	cmd.Flags().Duration("dns-timeout", config.DefaultDNSTimeout,
		"Timeout for each DNS lookup")
	cmd.Flags().DurationP("http-timeout", "t", config.DefaultHTTPTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().StringArray("resolver", nil,
		"Upstream DNS server (repeatable, default: system resolv.conf)")
	cmd.Flags().String("psl-file", "",
		"Public suffix list file in .dat format (default: bundled list)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("metrics", false,
		"Write a Prometheus textfile (metrics.prom) to the output directory")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
