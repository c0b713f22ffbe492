package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "./config/local.yaml"
	passwordEnv       = "ECOMCTL_SUPERUSER_PASSWORD"
)

// openRepositories connects to postgres and applies the schema. Tests swap it
// for a sqlmock-backed repository.
var openRepositories = repository.New

type cli struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "ecomctl",
		Short:         "ecomctl manages the e-commerce backend database",
		Long:          "ecomctl manages the e-commerce backend database: schema setup, superuser bootstrap and cart resets.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "the config file to use (defaults to $CONFIG_PATH or "+defaultConfigFile+")")

	rootCmd.AddCommand(c.migrateCmd(), c.createSuperuserCmd(), c.clearCartsCmd())

	return rootCmd
}

func (c *cli) loadConfig() error {
	path := c.configFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigFile
	}

	cfg, err := config.LoadConfigFromPath(path)
	if err != nil {
		return err
	}

	slog.Debug("Loaded config", slog.String("path", path))
	c.cfg = cfg

	return nil
}

func (c *cli) open() (*repository.Repository, error) {
	repos, err := openRepositories(c.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return repos, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := c.open()
			if err != nil {
				return err
			}
			defer repos.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func (c *cli) createSuperuserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an admin account with staff rights",
		Long:  "Create an admin account with staff rights. The password is read from --password or $" + passwordEnv + ".",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				return errors.New("a password is required: pass --password or set " + passwordEnv)
			}

			repos, err := c.open()
			if err != nil {
				return err
			}
			defer repos.Close()

			users := service.NewUserService(repos.User, nil, c.cfg.Security)

			user, err := users.CreateSuperuser(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created (id %s).\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username of the new admin")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password of the new admin")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (c *cli) clearCartsCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear-carts",
		Short: "Delete every cart",
		Long:  "Delete every cart and its contents. This cannot be undone, so --yes is required.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to delete every cart without --yes")
			}

			repos, err := c.open()
			if err != nil {
				return err
			}
			defer repos.Close()

			carts := service.NewCartService(repos.Cart, repos.Product)

			deleted, err := carts.ClearAllCarts(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d carts.\n", deleted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "confirm the deletion")

	return cmd
}
