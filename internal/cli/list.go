package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sable/internal/cache"
	"github.com/roach88/sable/internal/examples"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	CachePath string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in programs and cached artifacts",
		Long: `List the built-in programs available to compile.

With --cache, also lists the artifacts stored in the cache database in
insertion order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "artifact cache database path")

	return cmd
}

// listedArtifact is the JSON shape of one cached artifact row.
type listedArtifact struct {
	ID        string `json:"id"`
	Program   string `json:"program"`
	Hash      string `json:"hash"`
	Optimized bool   `json:"optimized"`
	WasmBytes int    `json:"wasm_bytes"`
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	names := examples.Names()

	var cached []listedArtifact
	if opts.CachePath != "" {
		store, err := cache.Open(opts.CachePath)
		if err != nil {
			formatter.Error(ErrCodeGeneric, "opening cache", err.Error())
			return WrapExitError(ExitCommandError, "opening cache", err)
		}
		defer store.Close()

		artifacts, err := store.List(cmd.Context())
		if err != nil {
			formatter.Error(ErrCodeGeneric, "listing cache", err.Error())
			return WrapExitError(ExitCommandError, "listing cache", err)
		}
		for _, a := range artifacts {
			cached = append(cached, listedArtifact{
				ID:        a.ID,
				Program:   a.ProgramName,
				Hash:      a.ProgramHash,
				Optimized: a.Optimized,
				WasmBytes: len(a.Wasm),
			})
		}
	}

	if formatter.Format == "json" {
		payload := map[string]any{"programs": names}
		if opts.CachePath != "" {
			payload["artifacts"] = cached
		}
		return formatter.Success(payload)
	}

	fmt.Fprintf(formatter.Writer, "Built-in programs:\n  %s\n", strings.Join(names, "\n  "))
	if opts.CachePath != "" {
		fmt.Fprintf(formatter.Writer, "Cached artifacts: %d\n", len(cached))
		for _, a := range cached {
			fmt.Fprintf(formatter.Writer, "  %s  %s  %s  optimized=%t  %d bytes\n",
				a.ID, a.Program, a.Hash[:12], a.Optimized, a.WasmBytes)
		}
	}
	return nil
}
