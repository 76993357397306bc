package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/qrform/internal/config"
)

var configFile string

// rootCmd runs the server when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "qrform",
	Short: "QR form intake service",
	Long: "qrform accepts public form submissions, stores them, lets the admin\n" +
		"list and delete them, and issues QR codes pointing at the form.",
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"YAML config file (default $"+config.ConfigFileEnv+")")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(qrcodeCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
