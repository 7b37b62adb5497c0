package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/dykim/evalboard/internal/dataset"
	"github.com/dykim/evalboard/internal/export"
	"github.com/dykim/evalboard/internal/handler"
	appI18n "github.com/dykim/evalboard/internal/i18n"
	"github.com/dykim/evalboard/internal/model"
	"github.com/dykim/evalboard/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "evalboard",
		Short: "Multi-user survey and LLM-response evaluation server",
	}

	serve := serveCmd()
	root.AddCommand(serve, loadCmd(), exportCmd(), adduserCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `evalboard --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP evaluation server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "evalboard.db", "SQLite database path")
	f.String("dataset", "", "Dataset JSON file loaded at startup when the item store is empty")
	f.StringP("lang", "l", "en", "UI message language (en, ko)")
	f.Bool("secure-cookies", true, "Set Secure flag on session cookies")
	f.String("admin-password", "", "Initial admin password (or set EVALBOARD_ADMIN_PASSWORD)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Replace the item store with a dataset file",
		Long: "Validates the dataset and replaces all items. This wipes every " +
			"recorded response along with the previous item set.",
		RunE: runLoad,
	}
	f := cmd.Flags()
	f.String("db", "evalboard.db", "SQLite database path")
	f.String("dataset", "", "Dataset JSON file (required)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export recorded results as CSV or JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "evalboard.db", "SQLite database path")
	f.StringP("format", "f", "csv", "Output format (csv, json)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func adduserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user account",
		RunE:  runAddUser,
	}
	f := cmd.Flags()
	f.String("db", "evalboard.db", "SQLite database path")
	f.StringP("username", "u", "", "Username (required)")
	f.StringP("password", "p", "", "Password (required)")
	f.StringP("role", "r", string(model.RoleUser), "Role (user, admin)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EVALBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("evalboard")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/evalboard")
	v.AddConfigPath("/etc/evalboard")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.CleanupExpiredSessions(); err != nil {
		slog.Warn("failed to clean up expired sessions", "error", err)
	}

	// Seed default admin user if no users exist.
	if err := seedAdmin(db, v.GetString("admin-password")); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	// Bootstrap the item store from a dataset file, but never clobber an
	// already-loaded set on restart.
	if path := v.GetString("dataset"); path != "" {
		if err := bootstrapDataset(db, path); err != nil {
			return fmt.Errorf("bootstrap dataset: %w", err)
		}
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	h := handler.New(db, model.ServerConfig{
		Lang:          lang,
		SecureCookies: v.GetBool("secure-cookies"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"db", v.GetString("db"),
		"lang", lang,
		"secure_cookies", v.GetBool("secure-cookies"),
	)
	return http.ListenAndServe(addr, r)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	items, err := parseDatasetFile(v.GetString("dataset"))
	if err != nil {
		return err
	}
	if err := db.ReplaceItems(items); err != nil {
		return fmt.Errorf("replace items: %w", err)
	}
	slog.Info("dataset loaded", "path", v.GetString("dataset"), "count", len(items))
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	rows, err := db.ExportRows()
	if err != nil {
		return fmt.Errorf("export rows: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch v.GetString("format") {
	case "csv":
		return export.WriteCSV(w, rows)
	case "json":
		return export.WriteJSON(w, rows)
	default:
		return fmt.Errorf("unsupported format %q (want csv or json)", v.GetString("format"))
	}
}

func runAddUser(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	role := model.Role(v.GetString("role"))
	if role != model.RoleUser && role != model.RoleAdmin {
		return fmt.Errorf("invalid role %q (want user or admin)", role)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(v.GetString("password")), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     v.GetString("username"),
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func parseDatasetFile(path string) ([]model.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	items, err := dataset.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return items, nil
}

func bootstrapDataset(db *store.Store, path string) error {
	count, err := db.ItemCount()
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("item store already populated, skipping dataset bootstrap",
			"path", path, "items", count)
		return nil
	}

	items, err := parseDatasetFile(path)
	if err != nil {
		return err
	}
	if err := db.ReplaceItems(items); err != nil {
		return err
	}
	slog.Info("bootstrapped item store", "path", path, "count", len(items))
	return nil
}

func seedAdmin(db *store.Store, password string) error {
	count, err := db.UserCount()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		return fmt.Errorf("admin password is required: set --admin-password flag or EVALBOARD_ADMIN_PASSWORD env var")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = db.CreateUser(model.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	slog.Info("seeded default admin user", "username", "admin")
	return nil
}
