// Package cli wires the mailsift commands: account management, rule
// management, triage passes, and single-message actions.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mailsift/mailsift/internal/classifier"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/engine"
	"github.com/mailsift/mailsift/internal/labels"
	"github.com/mailsift/mailsift/internal/provider/gmail"
	"github.com/mailsift/mailsift/internal/rules"
	"github.com/mailsift/mailsift/internal/store"
	"github.com/mailsift/mailsift/internal/store/sqlite"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	// jsonFlag enables JSON output for all commands.
	jsonFlag bool

	// verboseFlag lowers the log level to debug.
	verboseFlag bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "mailsift",
		Short:   "Rule-driven email triage for Gmail",
		Long:    "mailsift polls a Gmail mailbox and applies user-defined triage rules:\nmark read, archive, label, or summarize, based on sender, keyword, or\nAI-classified conditions.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verboseFlag {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
				switch shell {
				case "bash":
					return cmd.Root().GenBashCompletion(os.Stdout)
				case "zsh":
					return cmd.Root().GenZshCompletion(os.Stdout)
				case "fish":
					return cmd.Root().GenFishCompletion(os.Stdout, true)
				default:
					return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
				}
			}
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("mailsift %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	root.Flags().MarkHidden("generate-completion")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "enable debug logging")
	root.AddCommand(newAccountCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newSyncCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newLabelsCmd())
	root.AddCommand(newMarkReadCmd())
	root.AddCommand(newArchiveCmd())
	root.AddCommand(newTrashCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// openDB creates the data directory and opens the SQLite database.
func openDB() (*sqlite.DB, error) {
	dataDir := config.DataDir()
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "mailsift.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadConfig loads the application configuration from the config file.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.toml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// resolveAccountID determines which account to use based on config default
// or falls back to the first account in the database.
func resolveAccountID(db *sqlite.DB, cfg *config.Config) (string, error) {
	if cfg.Accounts.Default != "" {
		return cfg.Accounts.Default, nil
	}

	accounts, err := db.ListAccounts(context.Background())
	if err != nil {
		return "", fmt.Errorf("failed to list accounts: %w", err)
	}
	if len(accounts) == 0 {
		return "", fmt.Errorf("no accounts configured; run 'mailsift account add' first")
	}
	return accounts[0].ID, nil
}

// resolveGmailCredentials sets Gmail OAuth credentials using the first
// available source: config file, then environment variables.
func resolveGmailCredentials(cfg *config.Config) error {
	if cfg.Gmail.ClientID != "" && cfg.Gmail.ClientSecret != "" {
		gmail.SetCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret)
		return nil
	}

	clientID := os.Getenv("GMAIL_CLIENT_ID")
	clientSecret := os.Getenv("GMAIL_CLIENT_SECRET")
	if clientID != "" && clientSecret != "" {
		gmail.SetCredentials(clientID, clientSecret)
		return nil
	}

	return gmail.EnsureCredentials()
}

// newClassifier builds the classifier client from config, letting the
// MAILSIFT_AI_API_KEY environment variable override the configured key.
func newClassifier(cfg *config.Config) *classifier.Client {
	apiKey := cfg.AI.APIKey
	if env := os.Getenv("MAILSIFT_AI_API_KEY"); env != "" {
		apiKey = env
	}
	return classifier.New(classifier.Config{
		Endpoint: cfg.AI.Endpoint,
		APIKey:   apiKey,
		Model:    cfg.AI.Model,
		Timeout:  cfg.AITimeout(),
	})
}

// setupGateway creates a Gmail gateway for the resolved account.
func setupGateway(db *sqlite.DB, cfg *config.Config, accountFlag string) (*gmail.Gateway, string, error) {
	accountID := accountFlag
	if accountID == "" {
		var err error
		accountID, err = resolveAccountID(db, cfg)
		if err != nil {
			return nil, "", err
		}
	}

	if err := resolveGmailCredentials(cfg); err != nil {
		return nil, "", err
	}

	tokenStore := store.NewKeyringTokenStore()
	return gmail.New(accountID, tokenStore), accountID, nil
}

// setupController assembles the triage controller and its collaborators.
// The caller owns the returned DB and must close it after use.
func setupController(accountFlag string) (*engine.Controller, *sqlite.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	gateway, _, err := setupGateway(db, cfg, accountFlag)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	log := slog.Default()
	ai := newClassifier(cfg)
	evaluator := rules.NewEvaluator(ai, log)
	executor := rules.NewExecutor(gateway, labels.NewDirectory(gateway), ai, cfg.AI.MinSummaryChars, log)
	ctrl := engine.NewController(gateway, db, evaluator, executor, cfg.Sync.PageSize, log)
	return ctrl, db, nil
}
