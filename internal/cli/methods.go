package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/config"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
)

var (
	methodsEnvPath  string
	methodsCurrency string
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "List the payment methods available for a currency",
	RunE:  runMethods,
}

func init() {
	methodsCmd.Flags().StringVar(&methodsEnvPath, "env", "", "Path to Postman environment JSON (required)")
	methodsCmd.Flags().StringVar(&methodsCurrency, "currency", "USD", "Currency code (USD or GBP)")
	methodsCmd.MarkFlagRequired("env")
}

func runMethods(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := config.LoadEnvironment(methodsEnvPath)
	if err != nil {
		return err
	}

	client := gateway.NewClient(cfg.API.BaseURL, creds.PublicKey, creds.PrivateKey)
	methods, err := client.PaymentMethods(cmd.Context(), methodsCurrency)
	if err != nil {
		return fmt.Errorf("method discovery failed: %w", err)
	}

	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, m.PaymentMethod)
	}
	report.MethodTable(os.Stdout, names)
	return nil
}
