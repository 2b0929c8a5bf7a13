package networks

var OptimismMainnet Network = NewOptimismMainnet()

type optimismMainnet struct {
	*GenericNetwork
}

func NewOptimismMainnet() *optimismMainnet {
	return &optimismMainnet{
		GenericNetwork: NewGenericNetwork(Config{
			Name:             "optimism",
			Slug:             "op",
			DisplayName:      "Optimism",
			AlternativeNames: []string{"op", "op-mainnet"},
			ChainID:          10,
			BlockTime:        2,
			NodeVariableName: "OPTIMISM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"mainnet-optimism": "https://mainnet.optimism.io",
				"ankr":             "https://rpc.ankr.com/optimism",
			},
			BlockExplorerURL:     "https://optimistic.etherscan.io",
			DelegateToken:        "0x4200000000000000000000000000000000000042",
			DelegateTokenSymbol:  "OP",
			DelegateTokenDecimal: 18,
			MultiCallContract:    "0xcA11bde05977b3631167028862bE2a173976CA11",
		}),
	}
}
