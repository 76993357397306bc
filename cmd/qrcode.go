package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parisxmas/OxiDB/qrform/internal/config"
	"github.com/parisxmas/OxiDB/qrform/internal/qrcode"
	"github.com/parisxmas/OxiDB/qrform/internal/service"
)

var qrcodeOutput string

var qrcodeCmd = &cobra.Command{
	Use:   "qrcode [url]",
	Short: "Render the form QR code",
	Long: `Render a QR code for url, or for BASE_URL/form.html when no url is given.
With --output the PNG is written to a file; otherwise the data URI is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQRCode,
}

func init() {
	qrcodeCmd.Flags().StringVarP(&qrcodeOutput, "output", "o", "", "write PNG to this file")
}

func runQRCode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	target := ""
	if len(args) == 1 {
		target = args[0]
	}
	svc := service.NewQRCodeService(qrcode.NewEncoder(), qrOptions(cfg), cfg.BaseURL)
	if target == "" {
		target = svc.FormURL()
	}

	if qrcodeOutput == "" {
		res, err := svc.Generate(target)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.QRCode)
		return nil
	}

	png, err := qrcode.NewEncoder().PNG(target, qrOptions(cfg))
	if err != nil {
		return err
	}
	if err := os.WriteFile(qrcodeOutput, png, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s for %s\n", qrcodeOutput, target)
	return nil
}
