package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"iron-coder/internal/bootstrap"
	"iron-coder/internal/config"
	"iron-coder/internal/service"
)

// app carries state shared by subcommands once the root pre-run has loaded config.
type app struct {
	configDir string
	storePath string
	driver    string
	password  string

	cfg    config.Config
	logger *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "ironctl",
		Short: "Manage the Iron Coder credential store",
		Long: `ironctl registers and checks accounts in the Iron Coder credential store
and ships snapshots of it to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(a.configDir)
			if err != nil {
				return err
			}
			if a.storePath != "" {
				cfg.Store.Path = a.storePath
			}
			if a.driver != "" {
				cfg.Store.Driver = a.driver
			}
			a.cfg = cfg
			a.logger = bootstrap.NewLogger(cfg.Log.Level)
			a.logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "directory holding config.* and .env")
	rootCmd.PersistentFlags().StringVar(&a.storePath, "store", "", "credential store path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&a.driver, "driver", "", "store driver: file or sqlite (overrides config)")

	rootCmd.AddCommand(
		newRegisterCmd(a),
		newVerifyCmd(a),
		newExistsCmd(a),
		newBackupCmd(a),
		newBackupsCmd(a),
	)
	return rootCmd
}

// withUsers opens the store for the duration of fn.
func (a *app) withUsers(ctx context.Context, fn func(service.UserService) error) error {
	store, err := bootstrap.OpenStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := bootstrap.NewUserService(a.cfg, store.Users, a.logger)
	if err != nil {
		return err
	}
	return fn(users)
}

// readPassword takes --password when set, otherwise the first line of stdin.
func (a *app) readPassword(in io.Reader) (string, error) {
	if a.password != "" {
		return a.password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required (use --password or stdin)")
	}
	return password, nil
}
