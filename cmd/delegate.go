package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/networks"
)

var delegateNetwork string

var delegateCmd = &cobra.Command{
	Use:   "delegate <address>",
	Short: "Show the current delegate and token balance of an address",
	Long:  ``,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		holder, ok := d2ncommon.CanonicalAddress(args[0])
		if !ok {
			return fmt.Errorf("'%s' is not a valid address", args[0])
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := cliLogger()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.close()
		n, err := a.network(delegateNetwork)
		if err != nil {
			return err
		}
		if !n.HasDelegateToken() {
			return fmt.Errorf("network '%s' has no delegate token", n.GetName())
		}
		service, err := a.delegates([]networks.Network{n})
		if err != nil {
			return err
		}
		ctx := context.Background()

		fmt.Printf("%s delegate of %s\n", n.GetDisplayName(), holder.Hex())
		balance, err := service.Balance(ctx, holder, n)
		if err != nil {
			fmt.Printf("  balance: %s\n", d2ncommon.AlertColor(err.Error()))
		} else {
			fmt.Printf("  balance: %s %s\n", balance, n.GetDelegateTokenSymbol())
		}

		result := service.GetDelegate(ctx, holder, n)
		switch {
		case !result.Success:
			fmt.Printf("  delegate: %s\n", d2ncommon.AlertColor(result.ErrorDetail))
		case !result.HasDelegate():
			fmt.Printf("  delegate: %s\n", d2ncommon.NoteColor("none"))
		default:
			fmt.Printf("  delegate: %s\n", d2ncommon.InfoColor(result.Delegate.Hex()))
			if *result.Delegate == holder {
				fmt.Printf("  (self delegated)\n")
			}
		}
		return nil
	},
}

func init() {
	delegateCmd.Flags().StringVarP(&delegateNetwork, "network", "k", "op", "network of the delegate token, e.g. op or arb")
	rootCmd.AddCommand(delegateCmd)
}
