package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sable/internal/ir"
)

// CheckResult holds validation results.
type CheckResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <program>",
		Short: "Validate a program without compiling it",
		Long: `Load and validate a CUE program without lowering it.

Reports malformed expressions, unbound names, arity mismatches and
assignment to immutable bindings. Faster than compile for development
feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, loadErrors := LoadProgram(path)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) && loadErr.Code == ErrCodeNotFound {
			formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		msgs := make([]string, len(loadErrors))
		for i, e := range loadErrors {
			msgs[i] = e.Error()
		}
		formatter.Error(ErrCodeBadExpr, fmt.Sprintf("%s failed to load", path), msgs)
		return NewExitError(ExitFailure, "load failed")
	}

	formatter.VerboseLog("loaded program %s with %d binding(s)",
		loaded.Program.Name, len(loaded.Program.Bindings))

	if verrs := ir.Validate(loaded.Program); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, ve := range verrs {
			msgs[i] = ve.Error()
		}
		if formatter.Format == "json" {
			formatter.Success(CheckResult{Valid: false, Errors: msgs})
		} else {
			formatter.Error(ErrCodeInvalid, fmt.Sprintf("%s failed validation", loaded.Program.Name), msgs)
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	if formatter.Format == "json" {
		return formatter.Success(CheckResult{Valid: true})
	}
	return formatter.Success(fmt.Sprintf("%s is valid", loaded.Program.Name))
}
