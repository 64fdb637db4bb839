package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saif727/wallet-service-client/models"
	"github.com/saif727/wallet-service-client/services"
	"github.com/spf13/cobra"
	"github.com/stellar/go/support/errors"
)

func addOperationCommands(root *cobra.Command) {
	root.AddCommand(
		createWalletCmd(),
		sendCmd(),
		sendManyCmd(),
		balanceCmd(),
		addressesCmd(),
		addressBalanceCmd(),
		newAddressCmd(),
	)
}

func createWalletCmd() *cobra.Command {
	var opts services.CreateWalletOptions
	cmd := &cobra.Command{
		Use:   "create-wallet",
		Short: "Creates a new wallet (needs api_code)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.CreateWallet(cmd.Context(), opts))
		},
	}
	cmd.Flags().StringVar(&opts.Password, "password", "", "password for the new wallet, at least 10 characters")
	cmd.Flags().StringVar(&opts.PrivateKey, "private-key", "", "private key to import")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email to associate with the wallet")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for the first address")
	return cmd
}

func sendCmd() *cobra.Command {
	var (
		opts services.SendOptions
		fee  string
	)
	cmd := &cobra.Command{
		Use:   "send <to> <amount>",
		Short: "Sends funds to an address",
		Long:  `Amounts are satoshi, or bitcoin with a "btc" suffix (0.001btc).`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := models.ParseAmount(args[1])
			if err != nil {
				return err
			}
			if opts.Fee, err = parseOptionalAmount(fee); err != nil {
				return err
			}

			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.Send(cmd.Context(), args[0], amount, opts))
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "address to send from")
	cmd.Flags().StringVar(&fee, "fee", "", "transaction fee")
	return cmd
}

func sendManyCmd() *cobra.Command {
	var (
		opts services.SendOptions
		fee  string
	)
	cmd := &cobra.Command{
		Use:   "send-many <address=amount>...",
		Short: "Sends funds to several addresses in one transaction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipients, err := parseRecipients(args)
			if err != nil {
				return err
			}
			if opts.Fee, err = parseOptionalAmount(fee); err != nil {
				return err
			}

			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.SendMany(cmd.Context(), recipients, opts))
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "address to send from")
	cmd.Flags().StringVar(&fee, "fee", "", "transaction fee")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Prints the wallet balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.WalletBalance(cmd.Context()))
		},
	}
}

func addressesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addresses",
		Short: "Lists the wallet's addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.ListAddresses(cmd.Context()))
		},
	}
}

func addressBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address-balance <address>",
		Short: "Prints the balance of one address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.AddressBalance(cmd.Context(), args[0]))
		},
	}
}

func newAddressCmd() *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "new-address",
		Short: "Generates a new address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := setup(cmd)
			if err != nil {
				return err
			}
			return printResponse(cmd, client.NewAddress(cmd.Context(), label))
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "label for the new address")
	return cmd
}

func parseOptionalAmount(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return models.ParseAmount(s)
}

func parseRecipients(args []string) (models.Recipients, error) {
	recipients := models.Recipients{}
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, errors.New("recipient " + arg + " is not address=amount")
		}
		amount, err := models.ParseAmount(parts[1])
		if err != nil {
			return nil, err
		}
		recipients = recipients.Add(parts[0], amount)
	}
	return recipients, nil
}

// printResponse writes the decoded value. Results carrying a "balance"
// field get a bitcoin rendering on stderr.
func printResponse(cmd *cobra.Command, resp models.Response) error {
	if resp.IsNoResult() {
		return resp.Err
	}

	out, err := json.MarshalIndent(resp.Value, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode result")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if sat, ok := resp.Value.Get("balance").AsInt64(); ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "balance:", models.FormatAmount(sat))
	}

	if resp.IsValidationError() {
		return resp.Err
	}
	return nil
}
