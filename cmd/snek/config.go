package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after the load chain and flag overrides, as YAML.
With --defaults, print the embedded defaults instead; redirect it to
~/.snek/config.yaml to start a custom config.`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runConfig),
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the embedded defaults")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigDefaults {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
