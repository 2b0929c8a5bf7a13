package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/networks"
)

var checkNodes bool

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List the networks and which of them serve a delegate flow",
	Long:  ``,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, zap.NewNop())
		if err != nil {
			return err
		}
		defer a.close()

		served := map[string]bool{}
		for _, slug := range cfg.Flows {
			if n, err := a.network(slug); err == nil {
				served[n.GetSlug()] = true
			}
		}

		for _, n := range a.registry.Networks() {
			fmt.Printf("%s (%s, chain id %d)\n", n.GetDisplayName(), n.GetSlug(), n.GetChainID())
			if n.HasDelegateToken() {
				fmt.Printf("  token: %s %s\n", n.GetDelegateTokenSymbol(), n.GetDelegateTokenAddress().Hex())
			} else {
				fmt.Printf("  token: %s\n", d2ncommon.NoteColor("none"))
			}
			fmt.Printf("  nodes: %s\n", a.nodeStatus(cmd.Context(), n, checkNodes))
			if served[n.GetSlug()] {
				fmt.Printf("  flow:  %s\n", d2ncommon.InfoColor("/frame/delegate/"+n.GetSlug()+"/start"))
			}
		}
		return nil
	},
}

// nodeStatus reports how many nodes back n and, with check, the head block
// of the first node that answers.
func (a *app) nodeStatus(ctx context.Context, n networks.Network, check bool) string {
	r, err := a.reader(n)
	if err != nil {
		return "0"
	}
	if !check {
		return fmt.Sprintf("%d", r.NodeCount())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, externalTimeout)
	defer cancel()
	block, err := r.CurrentBlock(ctx)
	if err != nil {
		return fmt.Sprintf("%d, %s", r.NodeCount(), d2ncommon.AlertColor("unreachable"))
	}
	return fmt.Sprintf("%d, head block %d", r.NodeCount(), block)
}

func init() {
	networksCmd.Flags().BoolVar(&checkNodes, "check", false, "query the head block of every network")
	rootCmd.AddCommand(networksCmd)
}
