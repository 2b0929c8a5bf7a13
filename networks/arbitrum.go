package networks

var ArbitrumMainnet Network = NewArbitrumMainnet()

type arbitrumMainnet struct {
	*GenericNetwork
}

func NewArbitrumMainnet() *arbitrumMainnet {
	return &arbitrumMainnet{
		GenericNetwork: NewGenericNetwork(Config{
			Name:             "arbitrum",
			Slug:             "arb",
			DisplayName:      "Arbitrum",
			AlternativeNames: []string{"arb", "arbitrum-one"},
			ChainID:          42161,
			BlockTime:        1,
			NodeVariableName: "ARBITRUM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"arbitrum": "https://arb1.arbitrum.io/rpc",
				"ankr":     "https://rpc.ankr.com/arbitrum",
			},
			BlockExplorerURL:     "https://arbiscan.io",
			DelegateToken:        "0x912CE59144191C1204E64559FE8253a0e49E6548",
			DelegateTokenSymbol:  "ARB",
			DelegateTokenDecimal: 18,
			MultiCallContract:    "0xcA11bde05977b3631167028862bE2a173976CA11",
		}),
	}
}
