package ctl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"devmem/internal/config"
	"devmem/internal/logging"
	"devmem/pkg/types"
)

// Execute runs devmemctl with args, writing results to out and logs to errOut.
func Execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	root := BuildRootCmd(&Options{}, out, errOut)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// BuildRootCmd constructs the devmemctl command tree.
func BuildRootCmd(opts *Options, out, errOut io.Writer) *cobra.Command {
	var (
		cfg config.Config
		log zerolog.Logger
	)
	root := &cobra.Command{
		Use:           "devmemctl",
		Short:         "Inspect and exercise device memory through the devmem runtime layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file (.yaml, .toml or .json)")
	pf.StringVar(&opts.Runtime, "runtime", config.DefaultRuntime, "Device runtime: host|cuda (defaults DEVMEM_RUNTIME)")
	pf.StringVar(&opts.Device, "device", "", "Device label for the host runtime")
	pf.IntVar(&opts.BudgetMB, "budget-mb", 0, "Allocation budget in MB for the host runtime (0=unlimited)")
	pf.IntVar(&opts.MarginMB, "margin-mb", 0, "Reserved margin in MB kept free from the budget")
	pf.StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error (defaults DEVMEM_LOG_LEVEL)")
	pf.BoolVar(&opts.JSON, "json", false, "Print results as JSON")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if isCompletion(cmd) {
			return nil
		}
		resolved, err := opts.resolve(cmd)
		if err != nil {
			return err
		}
		cfg = resolved
		log = logging.NewConsole(cfg.LogLevel, errOut)
		return nil
	}

	withSession := func(cmd *cobra.Command, fn func(*session) error) error {
		s, err := openSession(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("release runtime")
			}
		}()
		return fn(s)
	}

	infoCmd := &cobra.Command{
		Use:     "info",
		Short:   "Show the runtime, its budget and allocation counters",
		Example: "  devmemctl info\n  devmemctl --runtime cuda info --json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				st := s.mgr.Status()
				if opts.JSON {
					return writeJSON(out, st)
				}
				return writeStatus(out, st)
			})
		},
	}

	var (
		dtype string
		elems int
		sizes string
	)
	roundtripCmd := &cobra.Command{
		Use:     "roundtrip",
		Short:   "Upload a patterned buffer, read it back and compare",
		Example: "  devmemctl roundtrip --elems 1048576 --dtype float64",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := types.ProbeRequest{Kind: types.ProbeRoundTrip, DType: dtype, Elems: elems}
			return withSession(cmd, func(s *session) error { return runProbe(cmd, s, req, opts.JSON, out) })
		},
	}
	roundtripCmd.Flags().StringVar(&dtype, "dtype", types.DTypeFloat32, "Element type: "+strings.Join(types.DTypes, "|"))
	roundtripCmd.Flags().IntVar(&elems, "elems", 1<<20, "Number of elements")

	growCmd := &cobra.Command{
		Use:     "grow",
		Short:   "Request a sequence of sizes from one handle and report reallocations",
		Example: "  devmemctl grow --sizes 1024,512,4096,4096",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseSizes(sizes)
			if err != nil {
				return err
			}
			req := types.ProbeRequest{Kind: types.ProbeGrow, DType: dtype, Sizes: parsed}
			return withSession(cmd, func(s *session) error { return runProbe(cmd, s, req, opts.JSON, out) })
		},
	}
	growCmd.Flags().StringVar(&dtype, "dtype", types.DTypeFloat32, "Element type: "+strings.Join(types.DTypes, "|"))
	growCmd.Flags().StringVar(&sizes, "sizes", "1024,512,4096,4096", "Comma-separated element counts")

	root.AddCommand(infoCmd, roundtripCmd, growCmd)

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(out) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(out, true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenPowerShellCompletionWithDesc(out) }})
	root.AddCommand(completionCmd)

	return root
}

func isCompletion(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}

func runProbe(cmd *cobra.Command, s *session, req types.ProbeRequest, asJSON bool, out io.Writer) error {
	resp, err := s.mgr.Probe(cmd.Context(), req)
	if err != nil {
		return err
	}
	if asJSON {
		err = writeJSON(out, resp)
	} else {
		err = writeProbe(out, resp)
	}
	if err != nil {
		return err
	}
	if !resp.Verified {
		return fmt.Errorf("%s: %d elements differ after the device round trip", resp.ID, resp.Mismatches)
	}
	return nil
}

func parseSizes(s string) ([]int, error) {
	parts := config.SplitCSV(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("--sizes needs at least one element count")
	}
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("--sizes: %q is not an integer", p)
		}
		out = append(out, n)
	}
	return out, nil
}
