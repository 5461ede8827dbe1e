package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/advisor-ai/internal/credential"
)

func newPasswordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the SMTP/IMAP app password in the system keyring",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the mail password read from standard input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), "Mail password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("reading password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password is empty")
			}
			if err := credential.Set(credential.MailPasswordKey, password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored mail password in the system keyring")
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored mail password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.Delete(credential.MailPasswordKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed mail password")
			return nil
		},
	}

	cmd.AddCommand(setCmd, deleteCmd)
	return cmd
}
