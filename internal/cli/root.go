package cli

import (
	"context"
	"os"
	"time"

	"github.com/arnavshah/duty-rotation-go/pkg/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type ctxKey struct{}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

func configFrom(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(ctxKey{}).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// NewRootCmd builds the rotation command tree
func NewRootCmd(version string) *cobra.Command {
	var (
		configPath  string
		rosterPath  string
		contextPath string
		outputDir   string
	)

	cmd := &cobra.Command{
		Use:          "rotation",
		Short:        "Skep diaken diensbeurte in 'n lukrake en regverdige manier",
		Long:         "Generates weekly duty rosters from a member list (diakens.txt). Output is written as CSV to the data directory.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(".env")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("roster") {
				cfg.RosterPath = rosterPath
			}
			if flags.Changed("context") {
				cfg.ContextPath = contextPath
			}
			if flags.Changed("out") {
				cfg.OutputDir = outputDir
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("ROTATION_CONFIG"), "YAML config file (env: ROTATION_CONFIG)")
	cmd.PersistentFlags().StringVar(&rosterPath, "roster", "", "Roster file, one member or comma separated group per line (default diakens.txt)")
	cmd.PersistentFlags().StringVar(&contextPath, "context", "", "Recently assigned names to avoid at the start (default konteks.txt)")
	cmd.PersistentFlags().StringVar(&outputDir, "out", "", "Output directory (default data)")

	cmd.AddCommand(newGenerateCmd(time.Now))
	cmd.AddCommand(newValidateCmd())

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}
