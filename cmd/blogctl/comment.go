package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/2beens/serjblog/internal/blog"
)

func newCommentCmd(open storeOpener) *cobra.Command {
	commentCmd := &cobra.Command{
		Use:   "comment",
		Short: "Moderate visitor comments",
	}

	commentCmd.AddCommand(
		&cobra.Command{
			Use:   "deactivate <id>",
			Short: "Hide a comment",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid comment id [%s]", args[0])
				}
				if err := blog.NewModerator(store).Deactivate(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "comment %d deactivated\n", id)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "activate <id>",
			Short: "Show a previously hidden comment again",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
				id, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid comment id [%s]", args[0])
				}
				if err := blog.NewModerator(store).Activate(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "comment %d activated\n", id)
				return nil
			}),
		},
	)

	return commentCmd
}
