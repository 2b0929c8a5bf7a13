package networks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the explicit per-network record every chain-facing component
// is built from. It can be decoded from YAML (the server config file) or
// JSON.
type Config struct {
	Name                 string            `json:"name" yaml:"name"`
	Slug                 string            `json:"slug" yaml:"slug"`
	DisplayName          string            `json:"display_name" yaml:"display_name"`
	AlternativeNames     []string          `json:"alternative_names" yaml:"alternative_names"`
	ChainID              uint64            `json:"chain_id" yaml:"chain_id"`
	BlockTime            uint64            `json:"block_time" yaml:"block_time"`
	NodeVariableName     string            `json:"node_variable_name" yaml:"node_variable_name"`
	DefaultNodes         map[string]string `json:"default_nodes" yaml:"default_nodes"`
	BlockExplorerURL     string            `json:"block_explorer_url" yaml:"block_explorer_url"`
	DelegateToken        string            `json:"delegate_token" yaml:"delegate_token"`
	DelegateTokenSymbol  string            `json:"delegate_token_symbol" yaml:"delegate_token_symbol"`
	DelegateTokenDecimal uint64            `json:"delegate_token_decimal" yaml:"delegate_token_decimal"`
	MultiCallContract    string            `json:"multi_call_contract_address" yaml:"multi_call_contract_address"`
}

// Validate checks the fields every network needs. Delegate token fields
// are optional; networks without one can only serve chain reads such as
// ENS lookups.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("network name is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("network '%s': chain_id is required", c.Name)
	}
	if c.DelegateToken != "" && !common.IsHexAddress(c.DelegateToken) {
		return fmt.Errorf("network '%s': invalid delegate_token %q", c.Name, c.DelegateToken)
	}
	if c.MultiCallContract != "" && !common.IsHexAddress(c.MultiCallContract) {
		return fmt.Errorf("network '%s': invalid multi_call_contract_address %q", c.Name, c.MultiCallContract)
	}
	return nil
}

// GenericNetwork is a Network backed entirely by a Config record.
type GenericNetwork struct {
	config Config
}

func NewGenericNetwork(config Config) *GenericNetwork {
	if config.Slug == "" {
		config.Slug = config.Name
	}
	if config.DisplayName == "" {
		config.DisplayName = config.Name
	}
	return &GenericNetwork{config: config}
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	config := Config{}
	if err := json.Unmarshal(content, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewGenericNetwork(config), nil
}

func (gn *GenericNetwork) Config() Config {
	return gn.config
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetSlug() string {
	return gn.config.Slug
}

func (gn *GenericNetwork) GetDisplayName() string {
	return gn.config.DisplayName
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetBlockExplorerURL() string {
	return strings.TrimRight(gn.config.BlockExplorerURL, "/")
}

func (gn *GenericNetwork) TxURL(txHash string) string {
	return gn.GetBlockExplorerURL() + "/tx/" + txHash
}

func (gn *GenericNetwork) HasDelegateToken() bool {
	return gn.config.DelegateToken != ""
}

func (gn *GenericNetwork) GetDelegateTokenAddress() common.Address {
	return common.HexToAddress(gn.config.DelegateToken)
}

func (gn *GenericNetwork) GetDelegateTokenSymbol() string {
	return gn.config.DelegateTokenSymbol
}

func (gn *GenericNetwork) GetDelegateTokenDecimal() uint64 {
	return gn.config.DelegateTokenDecimal
}

func (gn *GenericNetwork) MultiCallContract() string {
	if gn.config.MultiCallContract == "" {
		return ""
	}
	return common.HexToAddress(gn.config.MultiCallContract).Hex()
}
