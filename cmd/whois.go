package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	d2ncommon "github.com/send2-name/delegate2name-api/common"
	"github.com/send2-name/delegate2name-api/identity"
)

var whoisNetwork string

// cliLogger stays silent unless a log format was asked for explicitly.
func cliLogger() (*zap.Logger, error) {
	if logFormat == "" {
		return zap.NewNop(), nil
	}
	return newLogger(logFormat)
}

var whoisCmd = &cobra.Command{
	Use:   "whois <address|fid:N|name>...",
	Short: "Show who is behind addresses, fids, ENS names or farcaster handles",
	Long: `Resolve every param the same way the frames do. An address goes through
the address fallback chain, "fid:N" through the farcaster id lookup (ties
between linked addresses are broken by the delegate token balance on
--network) and anything else is a name: ENS style names end with .eth,
everything else is a farcaster handle.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AirstackAPIKey == "" {
			fmt.Println(d2ncommon.NoteColor("AIRSTACK_API_KEY is not set, farcaster lookups will fail"))
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
		n, err := a.network(whoisNetwork)
		if err != nil {
			return err
		}
		resolver := a.resolver()
		ctx := context.Background()

		for _, param := range args {
			var rec identity.Record
			switch {
			case strings.HasPrefix(param, "fid:"):
				fid, err := strconv.ParseUint(strings.TrimPrefix(param, "fid:"), 10, 64)
				if err != nil {
					fmt.Printf("%s: %s\n", param, d2ncommon.AlertColor("invalid fid"))
					continue
				}
				rec, err = resolver.ResolveBySocialID(ctx, fid, a.ranker(n))
				if err != nil {
					fmt.Printf("%s: %s\n", param, d2ncommon.AlertColor(err.Error()))
					continue
				}
			default:
				if addr, ok := d2ncommon.CanonicalAddress(param); ok {
					rec = resolver.ResolveByAddress(ctx, addr)
				} else {
					rec = resolver.ResolveByName(ctx, param)
				}
			}
			printRecord(param, rec)
		}
		return nil
	},
}

func printRecord(param string, rec identity.Record) {
	if !rec.Found() {
		fmt.Printf("%s: %s\n", param, d2ncommon.AlertColor("not found"))
		return
	}
	resolved := rec.Source != identity.Unresolved
	fmt.Printf("%s: %s (%s)\n", param, d2ncommon.NameWithColor(rec.DisplayName(), resolved), rec.Address.Hex())
	fmt.Printf("  source: %s\n", rec.Source)
	if rec.FarcasterHandle != "" {
		fmt.Printf("  farcaster: %s\n", rec.Handle())
	}
	if rec.NameServiceName != "" {
		fmt.Printf("  ens: %s\n", rec.NameServiceName)
	}
	if rec.AvatarURL != "" {
		fmt.Printf("  avatar: %s\n", rec.AvatarURL)
	}
}

func init() {
	whoisCmd.Flags().StringVarP(&whoisNetwork, "network", "k", "op", "network whose delegate token ranks the addresses of a fid")
	rootCmd.AddCommand(whoisCmd)
}
