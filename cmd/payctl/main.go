// Package main provides payctl, a CLI for the payments API.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/paykit"
	"github.com/kbukum/paykit/auth"
	"github.com/kbukum/paykit/payments"
	"github.com/kbukum/paykit/pollable"
)

var (
	cfgFile string
	verbose bool
	logger  zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "payctl",
	Short: "Payments API CLI",
	Long: `payctl drives the payments API from the command line: create and
inspect payments, build Hosted Payments Page links, and manage merchant
accounts.

Configuration is read from (in order of precedence) flags, environment
variables prefixed with PAYKIT_, a config file, and a .env file in the
working directory.

Required settings:
  PAYKIT_CLIENT_ID       - OAuth2 client id
  PAYKIT_CLIENT_SECRET   - OAuth2 client secret
Optional settings:
  PAYKIT_SCOPE           - OAuth2 scope (default: payments)
  PAYKIT_ENVIRONMENT     - live or sandbox (default: sandbox)
  PAYKIT_SIGNING_KEY_ID  - request signing key id
  PAYKIT_SIGNING_KEY_FILE- path to the EC P-521 private key PEM`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./payctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(createPaymentCmd)
	rootCmd.AddCommand(getPaymentCmd)
	rootCmd.AddCommand(hppLinkCmd)
	rootCmd.AddCommand(merchantAccountsCmd)
}

func initConfig() error {
	// A .env file is optional; ignore a missing one.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("payctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("paykit")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.SetDefault("scope", "payments")
	viper.SetDefault("environment", "sandbox")
	viper.SetDefault("timeout", 30*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
	return nil
}

func environment() (paykit.Environment, error) {
	switch env := viper.GetString("environment"); env {
	case "live":
		return paykit.EnvironmentLive(), nil
	case "sandbox":
		return paykit.EnvironmentSandbox(), nil
	case "custom":
		return paykit.EnvironmentCustom(
			viper.GetString("auth_url"),
			viper.GetString("payments_url"),
			viper.GetString("hpp_url"),
		), nil
	default:
		return paykit.Environment{}, fmt.Errorf("unknown environment %q", env)
	}
}

func newClient() (*paykit.Client, error) {
	env, err := environment()
	if err != nil {
		return nil, err
	}

	cfg := paykit.Config{
		Credentials: auth.ClientCredentials{
			ID:     viper.GetString("client_id"),
			Secret: viper.GetString("client_secret"),
			Scope:  viper.GetString("scope"),
		},
		Environment: env,
		Timeout:     viper.GetDuration("timeout"),
		Logger:      logger,
	}

	if keyFile := viper.GetString("signing_key_file"); keyFile != "" {
		pem, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		cfg.SigningKeyID = viper.GetString("signing_key_id")
		cfg.SigningKeyPEM = pem
	}

	return paykit.New(cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	amountInMinor uint64
	currency      string
	merchantID    string
	userName      string
	userEmail     string
	wait          bool
)

var createPaymentCmd = &cobra.Command{
	Use:   "create-payment",
	Short: "Create a payment into a merchant account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		resp, err := client.Payments.Create(cmd.Context(), &payments.CreatePaymentRequest{
			AmountInMinor: amountInMinor,
			Currency:      payments.Currency(currency),
			PaymentMethod: payments.BankTransfer(
				payments.UserSelected(),
				payments.MerchantAccountBeneficiary(merchantID),
			),
			User: payments.User{Name: userName, Email: userEmail},
		})
		if err != nil {
			return err
		}
		logger.Info().Str("payment_id", resp.ID).Msg("payment created")

		returnURI, err := cmd.Flags().GetString("return-uri")
		if err != nil {
			return err
		}
		if returnURI != "" {
			link := client.Payments.HostedPaymentsPageLink(resp.ID, resp.ResourceToken, returnURI)
			fmt.Println(link)
		}
		if wait {
			p, err := client.Payments.Poll(cmd.Context(), resp.ID, pollable.Options{})
			if err != nil {
				return err
			}
			return printJSON(p)
		}
		return printJSON(resp)
	},
}

var getPaymentCmd = &cobra.Command{
	Use:   "get-payment <payment-id>",
	Short: "Fetch a payment by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		p, err := client.Payments.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("payment %s not found", args[0])
		}
		return printJSON(p)
	},
}

var hppLinkCmd = &cobra.Command{
	Use:   "hpp-link <payment-id> <resource-token>",
	Short: "Build a Hosted Payments Page link for an existing payment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		returnURI, err := cmd.Flags().GetString("return-uri")
		if err != nil {
			return err
		}
		fmt.Println(client.Payments.HostedPaymentsPageLink(args[0], args[1], returnURI))
		return nil
	},
}

var merchantAccountsCmd = &cobra.Command{
	Use:   "merchant-accounts [id]",
	Short: "List merchant accounts, or show one by id",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			account, err := client.MerchantAccounts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("merchant account %s not found", args[0])
			}
			return printJSON(account)
		}
		accounts, err := client.MerchantAccounts.List(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(accounts)
	},
}

func init() {
	createPaymentCmd.Flags().Uint64Var(&amountInMinor, "amount", 0, "amount in minor units (required)")
	createPaymentCmd.Flags().StringVar(&currency, "currency", "GBP", "ISO 4217 currency code")
	createPaymentCmd.Flags().StringVar(&merchantID, "merchant-account", "", "beneficiary merchant account id (required)")
	createPaymentCmd.Flags().StringVar(&userName, "name", "", "end user name")
	createPaymentCmd.Flags().StringVar(&userEmail, "email", "", "end user email")
	createPaymentCmd.Flags().String("return-uri", "", "print an HPP link with this return URI")
	createPaymentCmd.Flags().BoolVar(&wait, "wait", false, "poll until the payment reaches a terminal status")
	_ = createPaymentCmd.MarkFlagRequired("amount")
	_ = createPaymentCmd.MarkFlagRequired("merchant-account")

	hppLinkCmd.Flags().String("return-uri", "", "return URI embedded in the link (required)")
	_ = hppLinkCmd.MarkFlagRequired("return-uri")
}
