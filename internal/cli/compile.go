package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sable/internal/cache"
	"github.com/roach88/sable/internal/emit"
	"github.com/roach88/sable/internal/examples"
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/lower"
	"github.com/roach88/sable/internal/optimize"
	"github.com/roach88/sable/internal/sourcemap"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output    string
	Binary    bool
	SourceMap string
	CachePath string
	Optimize  bool
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <program>",
		Short: "Compile a program to WebAssembly",
		Long: `Compile a built-in program or a CUE program file to WebAssembly.

The argument is either the name of a built-in program (see "sable list")
or the path to a CUE file or directory carrying a "program" struct.
By default the textual form is written to stdout; --binary writes the
binary form instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path (default stdout)")
	cmd.Flags().BoolVar(&opts.Binary, "binary", false, "emit the binary format instead of text")
	cmd.Flags().StringVar(&opts.SourceMap, "source-map", "", "write a source map to the given path (implies --binary)")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "artifact cache database path")
	cmd.Flags().BoolVar(&opts.Optimize, "optimize", true, "run the optimizer over the lowered module")

	return cmd
}

// resolveProgram maps the argument to a program: built-in name first,
// CUE path otherwise.
func resolveProgram(arg string) (ir.Program, ir.Namer, error) {
	if p, ok := examples.Get(arg); ok {
		return p.Program, p.Namer, nil
	}
	if _, err := os.Stat(arg); err == nil || strings.HasSuffix(arg, ".cue") {
		loaded, errs := LoadProgram(arg)
		if len(errs) > 0 {
			msgs := make([]string, len(errs))
			for i, e := range errs {
				msgs[i] = e.Error()
			}
			return ir.Program{}, ir.Namer{}, NewExitError(ExitFailure, strings.Join(msgs, "; "))
		}
		return loaded.Program, loaded.Namer, nil
	}
	return ir.Program{}, ir.Namer{},
		NewExitError(ExitCommandError, fmt.Sprintf("unknown program %q: not a built-in and no such file", arg))
}

func runCompile(opts *CompileOptions, arg string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	prog, namer, err := resolveProgram(arg)
	if err != nil {
		formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return err
	}

	if verrs := ir.Validate(prog); len(verrs) > 0 {
		details := make([]string, len(verrs))
		for i, ve := range verrs {
			details[i] = ve.Error()
		}
		formatter.Error(ErrCodeInvalid, fmt.Sprintf("program %s failed validation", prog.Name), details)
		return NewExitError(ExitFailure, "validation failed")
	}

	hash := ir.ProgramHash(prog)
	formatter.VerboseLog("compiling %s (hash %s)", prog.Name, hash[:12])

	var store *cache.Cache
	if opts.CachePath != "" {
		store, err = cache.Open(opts.CachePath)
		if err != nil {
			formatter.Error(ErrCodeGeneric, "opening cache", err.Error())
			return WrapExitError(ExitCommandError, "opening cache", err)
		}
		defer store.Close()

		if hit, err := store.Get(cmd.Context(), hash, opts.Optimize); err == nil {
			formatter.VerboseLog("cache hit (build %s)", hit.ID)
			return writeArtifact(opts, formatter, hit)
		}
	}

	mod, err := lower.Compile(prog, namer)
	if err != nil {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("compiling %s", prog.Name), err.Error())
		return WrapExitError(ExitFailure, "compilation failed", err)
	}
	if opts.Optimize {
		optimize.Module(mod)
	}

	artifact := cache.Artifact{
		ProgramHash: hash,
		ProgramName: prog.Name,
		Wat:         emit.Text(mod),
		Optimized:   opts.Optimize,
	}

	smBuilder := sourcemap.NewBuilder(outputName(opts, prog.Name))
	bin, err := emit.BinaryWithRecorder(mod, smBuilder)
	if err != nil {
		formatter.Error(ErrCodeGeneric, fmt.Sprintf("encoding %s", prog.Name), err.Error())
		return WrapExitError(ExitFailure, "encoding failed", err)
	}
	artifact.Wasm = bin

	smJSON, err := json.Marshal(smBuilder.Finish())
	if err != nil {
		return WrapExitError(ExitFailure, "rendering source map", err)
	}
	artifact.SourceMap = string(smJSON)

	if store != nil {
		if err := store.Put(cmd.Context(), artifact); err != nil {
			formatter.Error(ErrCodeGeneric, "caching artifact", err.Error())
			return WrapExitError(ExitCommandError, "caching artifact", err)
		}
		formatter.VerboseLog("cached under hash %s", hash[:12])
	}

	return writeArtifact(opts, formatter, artifact)
}

func outputName(opts *CompileOptions, progName string) string {
	if opts.Output != "" {
		return opts.Output
	}
	return progName + ".wasm"
}

// writeArtifact renders the selected form to the selected destination.
func writeArtifact(opts *CompileOptions, formatter *OutputFormatter, a cache.Artifact) error {
	if opts.SourceMap != "" {
		if err := os.WriteFile(opts.SourceMap, []byte(a.SourceMap), 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, "writing source map", err.Error())
			return WrapExitError(ExitCommandError, "writing source map", err)
		}
	}

	binary := opts.Binary || opts.SourceMap != ""
	if binary {
		path := outputName(opts, a.ProgramName)
		if err := os.WriteFile(path, a.Wasm, 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, "writing binary", err.Error())
			return WrapExitError(ExitCommandError, "writing binary", err)
		}
		return formatter.Success(fmt.Sprintf("wrote %s (%d bytes)", path, len(a.Wasm)))
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(a.Wat), 0o644); err != nil {
			formatter.Error(ErrCodeWriteFailed, "writing output", err.Error())
			return WrapExitError(ExitCommandError, "writing output", err)
		}
		return formatter.Success(fmt.Sprintf("wrote %s", opts.Output))
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{
			"program": a.ProgramName,
			"hash":    a.ProgramHash,
			"wat":     a.Wat,
		})
	}
	fmt.Fprint(formatter.Writer, a.Wat)
	return nil
}
