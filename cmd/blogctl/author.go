package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthorCmd(open storeOpener) *cobra.Command {
	authorCmd := &cobra.Command{
		Use:   "author",
		Short: "Manage post authors",
	}

	authorCmd.AddCommand(&cobra.Command{
		Use:   "add <username>",
		Short: "Add an author; adding an existing one is a no-op",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
			author, err := store.AddAuthor(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "author %d: %s\n", author.ID, author.Username)
			return nil
		}),
	})

	return authorCmd
}
