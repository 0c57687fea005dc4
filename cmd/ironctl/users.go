package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"iron-coder/internal/service"
)

var errInvalidCredentials = errors.New("invalid username or password")

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				if _, err := users.Register(cmd.Context(), args[0], password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&a.password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <username>",
		Short: "Check a username and password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := a.readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				ok, err := users.Verify(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				if !ok {
					return errInvalidCredentials
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&a.password, "password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newExistsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <username>",
		Short: "Report whether a username is taken",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withUsers(cmd.Context(), func(users service.UserService) error {
				exists, err := users.Exists(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), exists)
				return nil
			})
		},
	}
}
