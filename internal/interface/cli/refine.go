package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/dto"
	"github.com/YoshitsuguKoike/noterefiner/internal/application/usecase/lifecycle"
	"github.com/YoshitsuguKoike/noterefiner/internal/domain/mode"
)

type refineFlags struct {
	mode  string
	save  bool
	json  bool
	plain bool
}

func newRefineCmd(s *session) *cobra.Command {
	flags := &refineFlags{}

	cmd := &cobra.Command{
		Use:   "refine [note...]",
		Short: "Refine a note into a structured document",
		Long: `Refine a note into a structured document.

The note is taken from the arguments, or read from stdin when none are given.
With --save the result is added to the history.`,
		Example: `  noterefiner refine --mode email "server down, told client, fixed by restart"
  pbpaste | noterefiner refine --mode kb_article --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefine(cmd, s, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.mode, "mode", "m", mode.SessionDefault, "refinement mode (see 'noterefiner modes')")
	cmd.Flags().BoolVarP(&flags.save, "save", "s", false, "save the result to the history")
	cmd.Flags().BoolVar(&flags.json, "json", false, "output in JSON format")
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "print the refined text without terminal styling")
	return cmd
}

func runRefine(cmd *cobra.Command, s *session, flags *refineFlags, args []string) error {
	text, err := readNote(cmd, args)
	if err != nil {
		return err
	}

	c, err := s.container(cmd, outputFormat(flags.json, flags.plain))
	if err != nil {
		return err
	}
	defer c.Close()

	if !c.GetModes().IsKnown(flags.mode) {
		s.logger.Warn("unknown mode, using the general template", slog.String("mode", flags.mode))
	}

	ctrl := c.GetController()
	presenter := c.GetPresenter()

	if err := ctrl.Generate(cmd.Context(), text, flags.mode); err != nil {
		return reportError(presenter, err)
	}

	snap := ctrl.Snapshot()
	result := &dto.RefineResult{
		Mode:   snap.Mode,
		Label:  c.GetModes().Label(snap.Mode),
		Input:  snap.Input,
		Output: snap.Output,
	}

	message := ""
	if flags.save {
		saved, err := ctrl.Commit(cmd.Context())
		if err != nil {
			return reportError(presenter, fmt.Errorf("save note: %w", err))
		}
		result.Saved = &saved
		message = fmt.Sprintf("%s (id %d)", lifecycle.MsgSaved, saved.ID)
	}

	return presenter.PresentSuccess(message, result)
}

// readNote joins the arguments, or reads stdin when there are none
func readNote(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if stdinIsTerminal(in) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Enter your note, then Ctrl-D:")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read note from stdin: %w", err)
	}
	return string(data), nil
}
