// Command yatube-admin runs maintenance tasks against the configured
// database and cache.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/auth"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/models"
	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

const usage = `usage: yatube-admin <command> [flags] [args]

commands:
  migrate                       create or update the schema
  create-user <username>        add a user
  create-group <slug>           add a group (--title, --description)
  issue-token <username>        print a session token for a user
  clear-cache                   drop every cached response
`

var (
	errUsage = errors.New("invalid arguments")

	// errInMemoryCache is returned by clear-cache when no Redis URL is
	// configured; the server's in-process cache is out of this command's reach
	errInMemoryCache = errors.New("cache is in-memory inside the server process: restart the server or configure redis_url to clear it")
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		logging.GetLogger().Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, command string, args []string) error {
	fs := pflag.NewFlagSet(command, pflag.ContinueOnError)
	title := fs.String("title", "", "group title")
	description := fs.String("description", "", "group description")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	switch command {
	case "clear-cache":
		return clearCache(ctx, cfg)
	case "migrate", "create-user", "create-group", "issue-token":
	default:
		return errUsage
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	repo := db.NewRepository(database.DB)
	logger := logging.GetLogger()

	switch command {
	case "migrate":
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("Schema migrated")

	case "create-user":
		if fs.NArg() != 1 {
			return errUsage
		}
		user := &models.User{Username: fs.Arg(0), DateJoined: time.Now().UTC()}
		if err := db.NewUserRepository(repo).Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %q: %w", fs.Arg(0), err)
		}
		logger.Info("User created", zap.Int64("id", user.ID), zap.String("username", user.Username))

	case "create-group":
		if fs.NArg() != 1 || *title == "" {
			return errUsage
		}
		group := &models.Group{Slug: fs.Arg(0), Title: *title, Description: *description}
		if err := db.NewGroupRepository(repo).Create(ctx, group); err != nil {
			return fmt.Errorf("failed to create group %q: %w", fs.Arg(0), err)
		}
		logger.Info("Group created", zap.Int64("id", group.ID), zap.String("slug", group.Slug))

	case "issue-token":
		if fs.NArg() != 1 {
			return errUsage
		}
		user, err := db.NewUserRepository(repo).GetByUsername(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %q not found", fs.Arg(0))
		}
		token, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(user)
		if err != nil {
			return err
		}
		fmt.Println(token)
	}
	return nil
}

func clearCache(ctx context.Context, cfg *config.Config) error {
	if !cfg.Redis.Enabled {
		return errInMemoryCache
	}

	store, err := cache.New(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to cache: %w", err)
	}
	defer store.Close()

	if err := store.Clear(ctx); err != nil {
		return err
	}
	logging.GetLogger().Info("Cache cleared")
	return nil
}
