package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/noterefiner/internal/application/dto"
)

func newNotesCmd(s *session) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"history"},
		Short:   "Browse and manage the saved history",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	cmd.AddCommand(newNotesListCmd(s, &jsonOut))
	cmd.AddCommand(newNotesSearchCmd(s, &jsonOut))
	cmd.AddCommand(newNotesShowCmd(s, &jsonOut))
	cmd.AddCommand(newNotesDeleteCmd(s, &jsonOut))
	return cmd
}

func newNotesListCmd(s *session, jsonOut *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotes(cmd, s, *jsonOut, "", limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many notes (0 = all)")
	return cmd
}

func newNotesSearchCmd(s *session, jsonOut *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose original or refined text contains the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotes(cmd, s, *jsonOut, args[0], limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many notes (0 = all)")
	return cmd
}

func listNotes(cmd *cobra.Command, s *session, jsonOut bool, query string, limit int) error {
	c, err := s.historyContainer(cmd, outputFormat(jsonOut, false))
	if err != nil {
		return err
	}
	defer c.Close()

	store := c.GetNoteStore()
	matches := store.Search(query)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return c.GetPresenter().PresentSuccess("", &dto.NoteList{
		Query: query,
		Notes: matches,
		Total: store.Len(),
	})
}

func newNotesShowCmd(s *session, jsonOut *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			c, err := s.historyContainer(cmd, outputFormat(*jsonOut, false))
			if err != nil {
				return err
			}
			defer c.Close()

			n, ok := c.GetNoteStore().Get(id)
			if !ok {
				return fmt.Errorf("note %d not found", id)
			}
			return c.GetPresenter().PresentSuccess("", n)
		},
	}
}

func newNotesDeleteCmd(s *session, jsonOut *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			c, err := s.historyContainer(cmd, outputFormat(*jsonOut, false))
			if err != nil {
				return err
			}
			defer c.Close()

			store := c.GetNoteStore()
			_, existed := store.Get(id)
			if err := store.Delete(cmd.Context(), id); err != nil {
				return reportError(c.GetPresenter(), err)
			}

			message := fmt.Sprintf("Deleted note %d", id)
			if !existed {
				message = fmt.Sprintf("Note %d was not in the history", id)
			}
			return c.GetPresenter().PresentSuccess(message, nil)
		},
	}
}

func parseNoteID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", arg)
	}
	return id, nil
}
