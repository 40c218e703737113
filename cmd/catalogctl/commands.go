package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/database"
	"github.com/prenv/catalog-api/internal/document"
	"github.com/prenv/catalog-api/internal/document/service"
	"github.com/prenv/catalog-api/internal/storage"
	"github.com/prenv/catalog-api/internal/systemlog"
	"github.com/prenv/catalog-api/pkg/logger"
	"github.com/spf13/cobra"
)

var errUnhealthy = errors.New("document store unreachable")

// env holds what every subcommand needs. It is built lazily so --help works
// without a configured environment.
type env struct {
	cfg  *config.Config
	mgr  *database.Manager
	svc  *service.Service
	logs *systemlog.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Server.LogLevel)

	e := &env{cfg: cfg}
	if cfg.SystemLog.Path != "" {
		logs, err := systemlog.Open(cfg.SystemLog.Path, cfg.Server.PRNumber)
		if err != nil {
			logger.Warnf("system log unavailable: %v", err)
		} else {
			e.logs = logs
		}
	}
	dial, target := database.DialerFor(cfg.MongoDB)
	var mopts []database.Option
	svcOpts := []service.Option{service.WithPRNumber(cfg.Server.PRNumber)}
	if e.logs != nil {
		mopts = append(mopts, database.WithEvents(e.logs))
		svcOpts = append(svcOpts, service.WithEvents(e.logs))
	}
	e.mgr = database.NewManager(dial, target, mopts...)
	e.svc = service.New(e.mgr, svcOpts...)
	return e, nil
}

func (e *env) close(ctx context.Context) {
	_ = e.mgr.Close(ctx)
	_ = e.logs.Close()
}

// withEnv adapts a subcommand body that needs an env.
func withEnv(run func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.close(ctx)
		return run(cmd, args, e)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Operate the catalog API of a PR environment",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newPingCmd(), newSeedCmd(), newSeedPeopleCmd(), newExportCmd(), newLogsCmd())
	return root
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the document store answers; exits 1 when it does not",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			if !e.mgr.IsConnected(cmd.Context()) {
				fmt.Fprintf(cmd.OutOrStdout(), "unhealthy: %s unreachable\n", e.cfg.MongoDB.Database)
				return errUnhealthy
			}
			fmt.Fprintf(cmd.OutOrStdout(), "healthy: %s (PR %s)\n", e.cfg.MongoDB.Database, e.cfg.Server.PRNumber)
			return nil
		}),
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample products and users unless products exist",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			res, err := e.svc.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if res.AlreadySeeded {
				fmt.Fprintf(cmd.OutOrStdout(), "sample data already exists: %d products, %d users\n", res.ProductsCount, res.UsersCount)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d products, %d users\n", res.ProductsInserted, res.UsersInserted)
			return nil
		}),
	}
}

func newSeedPeopleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-people",
		Short: "Replace the people collection with the fixed roster",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			n, err := e.svc.SeedPeople(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d people\n", n)
			return nil
		}),
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <collection>",
		Short: "Upload a JSON snapshot of a collection to MinIO and print a download link",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
			ctx := cmd.Context()
			collection := strings.TrimSpace(args[0])
			docs, err := e.svc.List(ctx, collection)
			if err != nil {
				return err
			}
			objects, err := storage.NewMinIOStorage(ctx, e.cfg.MinIO)
			if err != nil {
				return err
			}
			out, err := storage.Export(ctx, objects, collection, e.cfg.Server.PRNumber, time.Now(), docs)
			if err != nil {
				return err
			}
			_ = e.logs.Record(ctx, "INFO", fmt.Sprintf("exported %d documents of %s to %s", out.Count, collection, out.Key))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d documents to %s\n%s\n", out.Count, out.Key, out.URL)
			return nil
		}),
	}
}

func newLogsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print recent system log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
			entries, err := e.logs.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, en := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s  PR %s  %s\n", document.FormatTime(en.Timestamp), en.Level, en.PRNumber, en.Message)
			}
			return nil
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", systemlog.DefaultLimit, "number of entries")
	return cmd
}
