// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "delegate2name",
	Short: "Farcaster frames to check and change your governance delegate",
	Long: `delegate2name serves Farcaster frames that let a user check who their
governance delegate is on Optimism or Arbitrum and delegate to someone else
by address, ENS name or Farcaster handle.

Besides the frame server, it has a few commands to look the same things up
from the terminal:

	1. whois resolves an address, a fid or a name the way the frames do.

	2. delegate shows the current delegate and token balance of an address.

	3. networks lists the networks the server knows about.

Configuration is read from an optional YAML file (--config), a .env file in
the working directory and the environment, in that order. RPC nodes can be
added per network with the following env vars:
	1. For Ethereum mainnet (ENS lookups): ETHEREUM_MAINNET_NODE
	2. For Optimism: OPTIMISM_MAINNET_NODE
	3. For Arbitrum: ARBITRUM_MAINNET_NODE
The Airstack API key (AIRSTACK_API_KEY) is required to serve frames.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: \"json\" or \"console\". Overrides the config.")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
