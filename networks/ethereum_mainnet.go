package networks

// EthereumMainnet hosts the ENS registry. No delegate flow is served on it.
var EthereumMainnet Network = NewEthereumMainnet()

// ENSRegistry is the ENS registry address on Ethereum mainnet.
const ENSRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

type ethereumMainnet struct {
	*GenericNetwork
}

func NewEthereumMainnet() *ethereumMainnet {
	return &ethereumMainnet{
		GenericNetwork: NewGenericNetwork(Config{
			Name:             "mainnet",
			Slug:             "eth",
			DisplayName:      "Ethereum",
			AlternativeNames: []string{"ethereum", "eth"},
			ChainID:          1,
			BlockTime:        12,
			NodeVariableName: "ETHEREUM_MAINNET_NODE",
			DefaultNodes: map[string]string{
				"ankr":       "https://rpc.ankr.com/eth",
				"publicnode": "https://ethereum-rpc.publicnode.com",
			},
			BlockExplorerURL:  "https://etherscan.io",
			MultiCallContract: "0xcA11bde05977b3631167028862bE2a173976CA11",
		}),
	}
}
