package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sensiurl/sensiurl/internal/config"
	"github.com/sensiurl/sensiurl/internal/runner"
	"github.com/sensiurl/sensiurl/pkg/version"
)

var (
	opts        config.Options
	headerFlags []string
)

type flagGroup struct {
	title string
	flags []string
}

var helpGroups = []flagGroup{
	{"TARGET", []string{"list", "rules"}},
	{"SCAN", []string{"probe-all", "classify-only", "retries", "max-body-bytes"}},
	{"RATE-LIMIT", []string{"concurrency", "rate-limit", "timeout", "adaptive-throttle"}},
	{"HTTP", []string{"header", "user-agent", "proxy", "insecure", "follow-redirects"}},
	{"FILTERS", []string{"min-severity", "category", "exclude-status"}},
	{"OUTPUT", []string{"output", "format", "sort", "quiet", "no-color", "verbose", "on-finding"}},
}

var rootCmd = &cobra.Command{
	Use:     "sensiurl [urls...] [flags]",
	Short:   "Sensitive URL triage scanner",
	Version: version.Version,
	Long: `sensiurl takes lists of URLs harvested during reconnaissance and triages
them for exposed sensitive resources: VCS metadata, credential files,
database dumps, backups, logs, and admin panels. Classification is
offline; confirmation uses a HEAD plus a small ranged GET per URL.`,
	Example: `  sensiurl https://example.com/.git/HEAD
  sensiurl -l urls.txt
  cat urls.txt | sensiurl -l -
  sensiurl -l urls.txt --classify-only
  sensiurl -l urls.txt --rate-limit 10 -c 50
  sensiurl -l urls.txt --min-severity high --category secrets,dumps
  sensiurl -l urls.txt -o report.json --format json
  sensiurl -l urls.txt --on-finding "notify-send {severity} {url}"`,
	Args: cobra.ArbitraryArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && opts.InputFile == "" {
			_ = cmd.Help()
			fmt.Fprintln(os.Stderr)
			return fmt.Errorf("no input: pass URLs as arguments or with -l")
		}
		if len(headerFlags) > 0 {
			opts.Headers = make(map[string]string, len(headerFlags))
			for _, h := range headerFlags {
				parts := strings.SplitN(h, ":", 2)
				if len(parts) != 2 {
					return fmt.Errorf("invalid header format %q, expected 'Key: Value'", h)
				}
				opts.Headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
			}
		}
		return opts.Validate()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runner.Run(ctx, &opts, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	// Target
	f.StringVarP(&opts.InputFile, "list", "l", "", "File with one URL per line (- for stdin)")
	f.StringVar(&opts.RulesFile, "rules", "", "YAML file with extra classification rules")

	// Scan behaviour
	f.BoolVar(&opts.ProbeAll, "probe-all", false, "Probe and report every URL, not just classified ones")
	f.BoolVar(&opts.ClassifyOnly, "classify-only", false, "Classify without sending any requests")
	f.IntVar(&opts.Retries, "retries", 0, "Retries per URL on transient failures")
	f.IntVar(&opts.MaxBodyBytes, "max-body-bytes", config.DefaultMaxBodyBytes, "Body sample size for evidence checks")

	// Rate limiting
	f.IntVarP(&opts.Concurrency, "concurrency", "c", config.DefaultConcurrency, "Number of concurrent probes")
	f.Float64Var(&opts.RateLimit, "rate-limit", 0, "Global request ceiling in req/s (0 = unlimited)")
	f.DurationVar(&opts.Timeout, "timeout", config.DefaultTimeout, "Per-request timeout")
	f.BoolVar(&opts.AdaptiveThrottle, "adaptive-throttle", false, "Auto back-off on 429/503 responses")

	// HTTP
	f.StringSliceVarP(&headerFlags, "header", "H", nil, "Custom headers (Key: Value)")
	f.StringVar(&opts.UserAgent, "user-agent", config.DefaultUserAgent, "Custom User-Agent string")
	f.StringVar(&opts.Proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.BoolVarP(&opts.Insecure, "insecure", "k", false, "Skip TLS certificate verification")
	f.BoolVar(&opts.FollowRedirects, "follow-redirects", false, "Follow HTTP redirects")

	// Filters
	f.StringVar(&opts.MinSeverity, "min-severity", "", "Hide findings below this severity (info, low, medium, high, critical)")
	f.StringSliceVar(&opts.Categories, "category", nil, "Only report these categories (comma-separated)")
	f.VarP(&intSliceValue{target: &opts.ExcludeStatus}, "exclude-status", "x", "Hide findings with these status codes (comma-separated)")

	// Output
	f.StringVarP(&opts.OutputFile, "output", "o", "", "Output file path")
	f.StringVar(&opts.OutputFormat, "format", "text", "Output format: text, json, csv")
	f.StringVar(&opts.SortBy, "sort", "", "Sort findings: severity, url, status, category")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "Minimal output")
	f.BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging")
	f.StringVar(&opts.OnFindingCmd, "on-finding", "", "Shell command to run for each finding (receives JSON on stdin)")

	// Custom help: categorized flags like httpx.
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		w := os.Stderr
		fmt.Fprint(w, helpBanner(cmd.Version))
		fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())
		fmt.Fprintf(w, "\nExamples:\n%s\n", cmd.Example)
		fmt.Fprintf(w, "\nFlags:\n")
		for _, g := range helpGroups {
			fmt.Fprintf(w, "\n%s:\n", g.title)
			for _, name := range g.flags {
				if f := cmd.Flags().Lookup(name); f != nil {
					fmt.Fprintln(w, formatFlag(f))
				}
			}
		}
		fmt.Fprintln(w)
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// intSliceValue implements pflag.Value for comma-separated int slices.
type intSliceValue struct {
	target *[]int
}

func (v *intSliceValue) String() string {
	if v.target == nil || len(*v.target) == 0 {
		return ""
	}
	parts := make([]string, len(*v.target))
	for i, val := range *v.target {
		parts[i] = strconv.Itoa(val)
	}
	return strings.Join(parts, ",")
}

func (v *intSliceValue) Set(s string) error {
	parts := strings.Split(s, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid status code %q: %w", p, err)
		}
		*v.target = append(*v.target, n)
	}
	return nil
}

func (v *intSliceValue) Type() string { return "ints" }

func formatFlag(f *pflag.Flag) string {
	var left string
	if f.Shorthand != "" {
		left = fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	} else {
		left = fmt.Sprintf("    --%s", f.Name)
	}

	typ := f.Value.Type()
	if typ != "bool" {
		left += " " + typ
	}

	// Pad to fixed column width for aligned descriptions.
	const col = 36
	for len(left) < col {
		left += " "
	}

	right := f.Usage
	// Show default for non-zero values.
	def := f.DefValue
	if def != "" && def != "false" && def != "0" && def != "0s" && def != "[]" {
		right += fmt.Sprintf(" (default %s)", def)
	}

	return "   " + left + right
}

func helpBanner(ver string) string {
	if ver != "dev" && ver != "" && !strings.HasPrefix(ver, "v") {
		ver = "v" + ver
	}
	return fmt.Sprintf(`
    ________  ____  _____(_)_  ______/ /
   / ___/ _ \/ __ \/ ___/ / / / / ___/ /
  (__  )  __/ / / (__  ) / /_/ / /  / /
 /____/\___/_/ /_/____/_/\__,_/_/  /_/   %s

`, ver)
}
