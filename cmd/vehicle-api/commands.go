package main

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-vehicle-api/application"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envPrefix  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "vehicle-api",
		Short:         "Vehicle catalogue API with a cache-aside snapshot",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/vehicle-api", "configuration directory")
	cmd.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", "APP", "prefix of overriding environment variables")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newPurgeCacheCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) newApp() (*application.App, error) {
	return application.New(application.Options{
		ConfigPath: o.configPath,
		EnvPrefix:  o.envPrefix,
		Version:    version,
	})
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.newApp()
			if err != nil {
				return err
			}
			if migrate {
				if err := app.Migrate(cmd.Context()); err != nil {
					_ = app.Shutdown(10 * time.Second)
					return err
				}
			}
			return app.Run()
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the vehicle table before serving")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the vehicle table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *application.App) error {
				if err := app.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration finished")
				return nil
			})
		},
	}
}

func newPurgeCacheCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Drop the cached vehicle snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, app *application.App) error {
				if err := app.PurgeCache(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cache purged")
				return nil
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

// withApp runs fn against a fresh container and always shuts it down.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *application.App) error) error {
	app, err := opts.newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runErr := fn(ctx, app)
	if err := app.Shutdown(10 * time.Second); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
