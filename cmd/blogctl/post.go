package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/pkg"
)

type postAddFlags struct {
	title     string
	body      string
	author    string
	tags      string
	slug      string
	publish   bool
	publishAt string
}

func newPostCmd(open storeOpener) *cobra.Command {
	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Write, tag and publish posts",
	}

	postCmd.AddCommand(
		newPostAddCmd(open),
		newPostPublishCmd(open),
		newPostUpdateCmd(open),
		newPostTagCmd(open),
	)

	return postCmd
}

func newPostAddCmd(open storeOpener) *cobra.Command {
	flags := &postAddFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a post, as a draft unless --publish is set",
		Args:  cobra.NoArgs,
		RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, _ []string) error {
			post, err := flags.toPost()
			if err != nil {
				return err
			}

			author, err := store.AuthorByUsername(ctx, flags.author)
			if err != nil {
				return fmt.Errorf("author [%s]: %w", flags.author, err)
			}
			post.AuthorID = author.ID

			if err := store.AddPost(ctx, post); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "post %d [%s] added as %s: %s\n", post.ID, post.Title, post.Status, post.AbsolutePath())
			return nil
		}),
	}

	cmd.Flags().StringVar(&flags.title, "title", "", "post title")
	cmd.Flags().StringVar(&flags.body, "body", "", "post body")
	cmd.Flags().StringVar(&flags.author, "author", "", "author username")
	cmd.Flags().StringVar(&flags.tags, "tags", "", "comma separated tags")
	cmd.Flags().StringVar(&flags.slug, "slug", "", "slug, derived from the title when empty")
	cmd.Flags().BoolVar(&flags.publish, "publish", false, "publish right away")
	cmd.Flags().StringVar(&flags.publishAt, "publish-at", "", "publish date (RFC3339), now when empty")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("body")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func (f *postAddFlags) toPost() (*blog.Post, error) {
	title := strings.TrimSpace(f.title)
	if title == "" {
		return nil, errors.New("title empty")
	}
	if len([]rune(title)) > 250 {
		return nil, errors.New("title longer than 250 characters")
	}

	slug := f.slug
	if slug == "" {
		slug = pkg.Slugify(title)
	}
	if slug == "" {
		return nil, fmt.Errorf("cannot derive a slug from [%s], use --slug", title)
	}

	post := &blog.Post{
		Title:  title,
		Slug:   slug,
		Body:   f.body,
		Status: blog.StatusDraft,
		Tags:   parseTags(f.tags),
	}
	if f.publish {
		post.Status = blog.StatusPublished
	}
	if f.publishAt != "" {
		publish, err := time.Parse(time.RFC3339, f.publishAt)
		if err != nil {
			return nil, fmt.Errorf("invalid --publish-at: %w", err)
		}
		post.Publish = publish.UTC()
	}

	return post, nil
}

func newPostPublishCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a draft",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := store.Publish(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "post %d published\n", id)
			return nil
		}),
	}
}

func newPostUpdateCmd(open storeOpener) *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the title and/or body of a post",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if title == "" && body == "" {
				return errors.New("nothing to update, set --title and/or --body")
			}

			post, err := store.PostByID(ctx, id)
			if err != nil {
				return err
			}
			if title == "" {
				title = post.Title
			}
			if body == "" {
				body = post.Body
			}

			if err := store.UpdatePost(ctx, id, title, body); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "post %d updated\n", id)
			return nil
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")

	return cmd
}

func newPostTagCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag,...>",
		Short: "Add tags to a post",
		Args:  cobra.ExactArgs(2),
		RunE: withStore(open, func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			tags := parseTags(args[1])
			if len(tags) == 0 {
				return errors.New("no tags given")
			}

			stored, err := store.TagPost(ctx, id, tags)
			if err != nil {
				return err
			}

			slugs := make([]string, 0, len(stored))
			for _, t := range stored {
				slugs = append(slugs, t.Slug)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "post %d tagged: %s\n", id, strings.Join(slugs, ", "))
			return nil
		}),
	}
}

// parseTags splits "Go, Web Dev" into tags named "Go" and "Web Dev",
// with slugs "go" and "web-dev". Duplicate slugs are dropped.
func parseTags(s string) []blog.Tag {
	var tags []blog.Tag
	seen := map[string]bool{}
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		slug := pkg.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		tags = append(tags, blog.Tag{Name: name, Slug: slug})
	}
	return tags
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id [%s]", s)
	}
	return id, nil
}
