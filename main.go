package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/cosminvladulescu/bcon-site/api"
	"github.com/cosminvladulescu/bcon-site/auth"
	"github.com/cosminvladulescu/bcon-site/config"
	"github.com/cosminvladulescu/bcon-site/database"
	"github.com/cosminvladulescu/bcon-site/models"
)

var rootCmd = &cobra.Command{
	Use:           "bcon-site",
	Short:         "B-CON Consulting website API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		setupLogger(config.New(), os.Stderr)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info().Msg("Migration complete")
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE:  runCreateAdmin,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate query helpers and report schema drift",
	RunE:  runGenerate,
}

func init() {
	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("name", "", "display name")
	createAdminCmd.Flags().String("password", "", "password (6 to 72 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	generateCmd.Flags().String("out", "./generated", "output directory for generated query code")
	generateCmd.Flags().Bool("report-only", false, "only print columns that exist in the database but not in the models")

	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd, generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setupLogger configures the global logger from LOG_LEVEL (default info) and
// LOG_FORMAT: console unless it is "json".
func setupLogger(c map[string]string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(config.GetString(c, "LOG_LEVEL", "info")))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.EqualFold(config.GetString(c, "LOG_FORMAT", "console"), "json") {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

func connect(ctx context.Context) (map[string]string, *gorm.DB, error) {
	c, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	// SSM may carry LOG_LEVEL and LOG_FORMAT too
	setupLogger(c, os.Stderr)

	db, err := database.Open(c)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info().Str("type", config.GetString(c, "DB_TYPE", "postgres")).Msg("Connected to database")

	return c, db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	c, db, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	server, err := api.NewServer(c, database.New(db))
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	errChannel := make(chan error, 2)
	go server.Start(errChannel)
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
	return nil
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	password, _ := cmd.Flags().GetString("password")

	if len(password) < 6 || len(password) > 72 {
		return fmt.Errorf("password must be between 6 and 72 characters")
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	_, db, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.AdminUser{Email: email, Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := database.New(db).AdminUserRepo().Add(cmd.Context(), admin); err != nil {
		return fmt.Errorf("create admin %s: %w", email, err)
	}

	log.Info().Str("id", admin.ID.String()).Str("email", admin.Email).Msg("Admin created")
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	reportOnly, _ := cmd.Flags().GetBool("report-only")

	_, db, err := connect(cmd.Context())
	if err != nil {
		return err
	}

	report, err := models.GenerateColumnMismatchReport(db)
	if err != nil {
		return err
	}
	if len(report) == 0 {
		log.Info().Msg("No column mismatches found")
	}
	for _, m := range report {
		log.Warn().Str("table", m.Table).Strs("columns", m.Columns).Msg("Columns missing from models")
	}

	if reportOnly {
		return nil
	}
	if err := models.GenerateModels(db, out); err != nil {
		return err
	}
	log.Info().Str("out", out).Msg("Generated query helpers")
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
