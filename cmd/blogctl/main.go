// blogctl is the authoring tool of the blog: authors, posts, tags and
// comment moderation.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/2beens/serjblog/internal/blog"
	"github.com/2beens/serjblog/internal/blog/litestore"
	"github.com/2beens/serjblog/internal/config"
	"github.com/2beens/serjblog/internal/db"
)

type authoringStore interface {
	AddAuthor(ctx context.Context, username string) (*blog.Author, error)
	AuthorByUsername(ctx context.Context, username string) (*blog.Author, error)
	AddPost(ctx context.Context, post *blog.Post) error
	PostByID(ctx context.Context, id int) (*blog.Post, error)
	TagPost(ctx context.Context, postID int, tags []blog.Tag) ([]blog.Tag, error)
	Publish(ctx context.Context, id int) error
	UpdatePost(ctx context.Context, id int, title, body string) error

	// used by the comment moderator
	PublishedByID(ctx context.Context, id int) (*blog.Post, error)
	AddComment(ctx context.Context, comment *blog.Comment) error
	SetCommentActive(ctx context.Context, id int, active bool) error
}

// storeOpener returns the store and a func releasing it.
type storeOpener func(ctx context.Context) (authoringStore, func(), error)

type rootFlags struct {
	env        string
	configPath string
	sqlitePath string
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	flags := &rootFlags{}
	rootCmd := newRootCmd(flags, flags.openStore)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(flags *rootFlags, open storeOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "blogctl",
		Short:         "Blog authoring tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.env, "env", "development", "environment [prod | production | dev | development | ddev | dockerdev ]")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite", "", "use the SQLite store at this path instead of postgres")

	rootCmd.AddCommand(
		newAuthorCmd(open),
		newPostCmd(open),
		newCommentCmd(open),
	)

	return rootCmd
}

func (f *rootFlags) openStore(ctx context.Context) (authoringStore, func(), error) {
	sqlitePath := f.sqlitePath
	var cfg *config.Config
	if sqlitePath == "" {
		var err error
		cfg, err = config.Load(f.env, f.configPath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.PostgresHost == "" {
			sqlitePath = cfg.SQLitePath
		}
	}

	if sqlitePath != "" {
		log.Debugf("using sqlite store: %s", sqlitePath)
		store, err := litestore.Open(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Errorf("close sqlite store: %s", err)
			}
		}, nil
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, nil, err
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBPassword: secrets.PostgresPassword,
	})
	if err != nil {
		return nil, nil, err
	}

	return blog.NewRepo(pool), pool.Close, nil
}

// withStore opens the store for the duration of one command.
func withStore(
	open storeOpener,
	run func(ctx context.Context, cmd *cobra.Command, store authoringStore, args []string) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, closeStore, err := open(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer closeStore()

		return run(ctx, cmd, store, args)
	}
}
