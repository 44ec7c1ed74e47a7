// Command sparesmartd serves the SpareSmart inventory API and its maintenance tasks.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sparesmart-backend/config"
	"sparesmart-backend/internal/logging"
)

const defaultConfigPath = "./config/config.yaml"

var (
	// configFile is set by the --config flag.
	configFile string

	// cfg is loaded by PersistentPreRunE for every command that needs it.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sparesmartd",
	Short: "SpareSmart packaging-line inventory service",
	Long: `sparesmartd tracks production lines, their machines, the spare parts
held against each machine and the checkweighers calibrated per line.
Without a subcommand it starts the HTTP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: $SPARESMART_CONFIG, $CONFIG_PATH or "+defaultConfigPath+")")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}

// loadConfig resolves the config path, reads the file and applies the
// environment overrides.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == hashPasswordCmd.Name() {
		return nil
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SPARESMART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("config", defaultConfigPath)
	if err := v.BindEnv("config", "SPARESMART_CONFIG", "CONFIG_PATH"); err != nil {
		return err
	}
	if err := v.BindPFlag("config", cmd.Flags().Lookup("config")); err != nil {
		return err
	}
	for _, key := range []string{"database.dsn", "server.port"} {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}

	path := v.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", path, err)
	}
	if dsn := v.GetString("database.dsn"); dsn != "" {
		loaded.Database.DSN = dsn
	}
	if port := v.GetInt("server.port"); port > 0 {
		loaded.Server.Port = port
	}
	cfg = loaded

	logging.Setup(cfg.Logging)
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	log.Info().Str("path", path).Msg("configuration loaded")
	return nil
}
