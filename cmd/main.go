package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/server"
	"docvault/internal/service"
	"docvault/internal/version"
	"docvault/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by --config (or DOCVAULT_CONFIG)
// and sets up the global logger
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("reading config: %w", err)
	}
	return cfg, logger.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format), nil
}

// newServer connects every backend. The caller must defer srv.Close().
func newServer(ctx context.Context) (*server.Server, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	srv, err := server.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initializing server: %w", err)
	}
	return srv, nil
}

var rootCmd = &cobra.Command{
	Use:          "docvault",
	Short:        "Document vault server and admin tool",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := newServer(ctx)
		if err != nil {
			return err
		}
		defer srv.Close()
		return srv.Run(ctx)
	},
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := server.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		if err := repository.EnsureIndexes(cmd.Context(), client.Database(cfg.Database.Database)); err != nil {
			return err
		}
		fmt.Printf("Indexes ensured on %s\n", cfg.Database.Database)
		return nil
	},
}

var (
	userEmail      string
	userPassword   string
	userName       string
	userDepartment string
)

var useraddCmd = &cobra.Command{
	Use:   "useradd",
	Short: "Create a password account",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := newServer(cmd.Context())
		if err != nil {
			return err
		}
		defer srv.Close()

		user, err := srv.Services().Users.CreateUser(cmd.Context(), service.NewAccount{
			Email:        userEmail,
			Password:     userPassword,
			FullName:     userName,
			DepartmentID: userDepartment,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", user.Email, user.ID.Hex())
		return nil
	},
}

var departmentCmd = &cobra.Command{
	Use:   "department",
	Short: "Manage departments",
}

var (
	departmentDescription string
	departmentColor       string
)

var departmentAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a department",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := newServer(cmd.Context())
		if err != nil {
			return err
		}
		defer srv.Close()

		dep, err := srv.Services().Departments.Create(cmd.Context(), model.CreateDepartmentRequest{
			Name:        args[0],
			Description: departmentDescription,
			Color:       departmentColor,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created department %s (%s)\n", dep.Name, dep.ID.Hex())
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Push every document into the search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := newServer(cmd.Context())
		if err != nil {
			return err
		}
		defer srv.Close()

		n, err := srv.Services().Documents.Reindex(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Indexed %d documents\n", n)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Printf("docvault %s", info.Version)
		if info.Commit != "" {
			fmt.Printf(" (%s)", info.Commit)
		}
		if info.BuildTime != "" {
			fmt.Printf(" built %s", info.BuildTime)
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("DOCVAULT_CONFIG"), "path to a TOML config file")

	useraddCmd.Flags().StringVar(&userEmail, "email", "", "account email")
	useraddCmd.Flags().StringVar(&userPassword, "password", "", "account password")
	useraddCmd.Flags().StringVar(&userName, "name", "", "full name (defaults to the email local part)")
	useraddCmd.Flags().StringVar(&userDepartment, "department", "", "department id")
	_ = useraddCmd.MarkFlagRequired("email")
	_ = useraddCmd.MarkFlagRequired("password")

	departmentAddCmd.Flags().StringVar(&departmentDescription, "description", "", "department description")
	departmentAddCmd.Flags().StringVar(&departmentColor, "color", "", "hex color, e.g. #3b82f6")
	departmentCmd.AddCommand(departmentAddCmd)

	rootCmd.AddCommand(serveCmd, indexesCmd, useraddCmd, departmentCmd, reindexCmd, versionCmd)
}
