package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/signify/internal/common"
	"github.com/dmitrijs2005/signify/internal/server"
	"github.com/dmitrijs2005/signify/internal/server/config"
	"github.com/dmitrijs2005/signify/internal/server/models"
	"github.com/dmitrijs2005/signify/internal/server/services"
	"github.com/spf13/cobra"
)

// newApp is a seam for tests.
var newApp = func(ctx context.Context) (app, error) {
	return server.NewApp(ctx, config.LoadConfig())
}

type app interface {
	Run(ctx context.Context) error
	Migrate(ctx context.Context) error
	Reclaim(ctx context.Context) (*services.ReclaimResult, error)
	AddUser(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error)
	Close() error
}

var serveCmd = &cobra.Command{
	Use:                "serve",
	Short:              "Run the HTTP server and background jobs",
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: passConfigFlags,
	SilenceUsage:       true,
	RunE:               runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(cmd.Context())
}

var migrateCmd = &cobra.Command{
	Use:                "migrate",
	Short:              "Apply database migrations and exit",
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: passConfigFlags,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Migrations applied")
		return nil
	},
}

var reclaimCmd = &cobra.Command{
	Use:   "reclaim",
	Short: "Reset lapsed streaks once and print the result",
	Long: `Run the streak reclaimer once: every positive streak whose last
activity is older than 48 hours is reset to zero. Requires the service
database DSN (-sd or SIGNIFY_SERVICE_DATABASE_DSN).`,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: passConfigFlags,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Reclaim(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to reset streaks: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(res)
	},
}

var adduserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Create a user account",
	Long: `Create a user account directly in the database. The password is
prompted for without echo when stdin is a terminal, otherwise it is read
from the first line of stdin.`,
	Args:               cobra.ArbitraryArgs,
	FParseErrWhitelist: passConfigFlags,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		nickname, _ := cmd.Flags().GetString("nickname")
		fullName, _ := cmd.Flags().GetString("full-name")

		reader := bufio.NewReader(cmd.InOrStdin())
		if email == "" {
			var err error
			if email, err = GetSimpleText(reader, "Email", cmd.OutOrStdout()); err != nil {
				return err
			}
		}

		password, err := readPasswordInput(reader, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		in := services.RegisterInput{Email: email, Password: password, Nickname: nickname}
		if fullName = strings.TrimSpace(fullName); fullName != "" {
			in.FullName = &fullName
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.AddUser(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ User created: %s (%s)\n", p.Email, p.ID)
		return nil
	},
}

func init() {
	adduserCmd.Flags().String("email", "", "Email address")
	adduserCmd.Flags().String("nickname", "", "Nickname (defaults to the email local part)")
	adduserCmd.Flags().String("full-name", "", "Full name")
}

func readPasswordInput(reader *bufio.Reader, w io.Writer) (string, error) {
	if isTerminal(int(os.Stdin.Fd())) {
		pw, err := GetPassword(w)
		if err != nil {
			return "", err
		}
		defer common.WipeByteArray(pw)
		return string(pw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
