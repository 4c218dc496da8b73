package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/config"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/flow"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/gateway"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/report"
	"github.com/paysafedeveloper/paysafe-ai-payment-cli/internal/validate"
)

var (
	envPath    string
	currency   string
	amount     int64
	withCancel bool
	withRefund bool
	expectPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full payment lifecycle",
	RunE:  runRun,
}

func init() {
	// Root invoked bare behaves as run, so the flags live on both
	registerRunFlags(runCmd)
	registerRunFlags(rootCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&envPath, "env", "", "Path to Postman environment JSON (required)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "Currency code (USD or GBP)")
	cmd.Flags().Int64Var(&amount, "amount", 4, "Amount in minor units")
	cmd.Flags().BoolVar(&withCancel, "cancel", false, "Attempt cancellation while the payment is processing")
	cmd.Flags().BoolVar(&withRefund, "refund", false, "Refund the payment after completion")
	cmd.Flags().StringVar(&expectPath, "expect", "", "Path to an expected-result fixture")
	cmd.MarkFlagRequired("env")
}

func runRun(cmd *cobra.Command, args []string) error {
	if currency != "USD" && currency != "GBP" {
		return fmt.Errorf("unsupported currency %q: must be USD or GBP", currency)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := config.LoadEnvironment(envPath)
	if err != nil {
		return err
	}
	accountID, err := creds.CardAccountID(currency)
	if err != nil {
		return err
	}

	logger := newLogger()
	client := gateway.NewClient(cfg.API.BaseURL, creds.PublicKey, creds.PrivateKey)
	reporter := report.NewConsole(os.Stdout, logger)

	txn := flow.TransactionContext{
		Currency:    currency,
		Amount:      amount,
		MerchantRef: uuid.New().String(),
		AccountID:   accountID,
		Card: gateway.Card{
			CardNum: cfg.Card.Number,
			CardExpiry: gateway.CardExpiry{
				Month: cfg.Card.ExpiryMonth,
				Year:  cfg.Card.ExpiryYear,
			},
			CVV:        cfg.Card.CVV,
			HolderName: cfg.Card.HolderName,
		},
		Profile: gateway.Profile{
			FirstName: cfg.Customer.FirstName,
			LastName:  cfg.Customer.LastName,
			Email:     cfg.Customer.Email,
		},
		Billing: gateway.BillingDetails{
			NickName: "Home",
			Street:   cfg.Customer.Street,
			City:     cfg.Customer.City,
			Zip:      cfg.Customer.Zip,
			Country:  cfg.Customer.Country,
			State:    cfg.Customer.State,
		},
		ReturnLinks:     defaultReturnLinks(),
		CustomerIP:      cfg.Customer.IP,
		CancelRequested: withCancel,
		RefundRequested: withRefund,
	}

	orch := flow.NewOrchestrator(client, reporter, settingsFrom(cfg))

	fmt.Printf("Starting test for %s, amount %d\n\n", currency, amount)
	result, runErr := orch.Run(cmd.Context(), txn)

	if expectPath != "" {
		fx, err := validate.LoadFixture(expectPath)
		if err != nil {
			return err
		}
		verdict := validate.Check(validate.Observed{ErrorCode: flow.RemoteCodeOf(runErr)}, fx)
		fmt.Println(verdict)
		if !verdict.Pass {
			return fmt.Errorf("outcome did not match fixture")
		}
		return nil
	}

	if runErr != nil {
		if flow.KindOf(runErr) == flow.KindUnclassified {
			return reportDiagnostics(txn, result, runErr)
		}
		return runErr
	}

	switch {
	case result.Final == flow.StateCompleted:
		return nil
	case result.Final == flow.StateCancelled && withCancel:
		return nil
	}
	return fmt.Errorf("transaction finished %s", result.Final)
}

func settingsFrom(cfg *config.Config) flow.Settings {
	s := flow.DefaultSettings()
	if cfg.Poll.IntervalSeconds > 0 {
		s.PollInterval = time.Duration(cfg.Poll.IntervalSeconds) * time.Second
	}
	if cfg.Poll.MaxAttempts > 0 {
		s.MaxPollAttempts = cfg.Poll.MaxAttempts
	}
	if cfg.Poll.RefundIntervalSeconds > 0 {
		s.RefundPollInterval = time.Duration(cfg.Poll.RefundIntervalSeconds) * time.Second
	}
	if cfg.Poll.RefundMaxAttempts > 0 {
		s.MaxRefundAttempts = cfg.Poll.RefundMaxAttempts
	}
	if cfg.Poll.ReconcileWaitSeconds > 0 {
		s.ReconcileWait = time.Duration(cfg.Poll.ReconcileWaitSeconds) * time.Second
	}
	return s
}

func defaultReturnLinks() []gateway.ReturnLink {
	return []gateway.ReturnLink{
		{Rel: "on_completed", Href: "https://www.example.com/completed/", Method: "GET"},
		{Rel: "on_failed", Href: "https://www.example.com/failed/", Method: "GET"},
		{Rel: "default", Href: "https://www.example.com/failed/", Method: "GET"},
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// reportDiagnostics persists full failure detail and surfaces only the
// file path on the console.
func reportDiagnostics(txn flow.TransactionContext, result *flow.Result, runErr error) error {
	d := report.Diagnostics{
		MerchantRef: txn.MerchantRef,
		Currency:    txn.Currency,
		Amount:      txn.Amount,
		Error:       runErr.Error(),
	}
	if result != nil && result.Payment != nil {
		d.LastState = string(result.Payment.State)
	}
	path, werr := report.WriteDiagnostics(config.DiagnosticsDir(), d)
	if werr != nil {
		return fmt.Errorf("run failed (%v); diagnostics capture also failed: %w", runErr, werr)
	}
	return fmt.Errorf("run failed; full diagnostics written to %s", path)
}
