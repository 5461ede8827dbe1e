package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/advisor-ai/internal/app"
	"github.com/nhle/advisor-ai/internal/backend"
	"github.com/nhle/advisor-ai/internal/chat"
	"github.com/nhle/advisor-ai/internal/credential"
	"github.com/nhle/advisor-ai/internal/dispatch"
	"github.com/nhle/advisor-ai/internal/logging"
	"github.com/nhle/advisor-ai/internal/model"
	"github.com/nhle/advisor-ai/internal/store"
)

type rootOptions struct {
	configPath string
	dbPath     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "advisorai",
		Short: "Chat with your college advisor from the terminal",
		Long: `advisorai talks to the AdvisorAI advising backend.

Replies that suggest contacting an academic advisor carry a button; press
ctrl+e to open a prefilled email in your mail client, Gmail, or send it
over SMTP, depending on the mail.method setting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the SQLite database (overrides storage.db_path)")

	cmd.AddCommand(
		newExtractCommand(),
		newConfigCommand(opts),
		newPasswordCommand(),
	)
	return cmd
}

func loadConfig(opts *rootOptions) (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbPath != "" {
		cfg.Storage.DBPath = opts.dbPath
	}
	return cfg, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log, closer, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	userID, err := st.UserID(ctx)
	if err != nil {
		return err
	}
	profile, err := st.LoadProfile(ctx)
	if err != nil {
		return err
	}

	var password string
	if cfg.Mail.Method == model.MailMethodSMTP {
		password, err = credential.MailPassword()
		if err != nil {
			log.Warn().Err(err).Msg("reading mail password, continuing without it")
		}
	}

	log.Info().
		Str("user_id", userID).
		Str("backend", cfg.Backend.BaseURL).
		Str("mail_method", cfg.Mail.Method).
		Msg("starting")

	svc := chat.New(backend.New(cfg.Backend, log), st, userID, log)
	m := app.New(app.Options{
		Chat:     svc,
		Profiles: st,
		Profile:  profile,
		NewDispatcher: func(p model.UserProfile) dispatch.Dispatcher {
			return dispatch.New(cfg.Mail, p, password, log)
		},
		Display:        cfg.Display,
		RequestTimeout: cfg.Backend.Timeout(),
		Log:            log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
