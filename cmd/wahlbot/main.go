// Command wahlbot corre el backend (serve) y las tareas operativas:
// migraciones y alta de usuarios.
package main

import (
	"fmt"
	"os"

	"github.com/dropDatabas3/wahlbot/internal/config"
	"github.com/dropDatabas3/wahlbot/internal/observability/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version se sobreescribe con -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	envFile    string

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "wahlbot",
		Short:         "Backend de Wahlbot: auth, programas y chat",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", envOr("WAHLBOT_CONFIG", "configs/config.yaml"), "Path al YAML de configuración (env WAHLBOT_CONFIG)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Archivo .env opcional")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newUserCmd(opts))
	return root
}

// load lee .env (si existe), la config y arranca el logger del proceso.
func (o *rootOptions) load() error {
	envErr := godotenv.Load(o.envFile)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cfg.App.Version == "" {
		cfg.App.Version = version
	}
	o.cfg = cfg

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.L().Warn("env file not loaded", logger.String("path", o.envFile), logger.Err(envErr))
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
