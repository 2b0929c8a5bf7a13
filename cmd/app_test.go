package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/config"
	"github.com/send2-name/delegate2name-api/networks"
	"github.com/send2-name/delegate2name-api/util/reader"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AirstackAPIKey = "key"
	cfg.Nodes = map[string]map[string]string{
		"optimism": {config.CustomNodeName: "http://localhost:8545"},
		"arbitrum": {config.CustomNodeName: "http://localhost:8546"},
		"mainnet":  {config.CustomNodeName: "http://localhost:8547"},
	}
	return cfg
}

func TestAppMachine_WiresConfiguredFlows(t *testing.T) {
	a, err := newApp(testConfig(), zap.NewNop())
	require.NoError(t, err)

	m, err := a.machine()
	require.NoError(t, err)
	assert.Equal(t, []string{"arb", "op"}, m.Networks())
}

func TestAppReader_SharedPerChain(t *testing.T) {
	a, err := newApp(testConfig(), zap.NewNop())
	require.NoError(t, err)

	first, err := a.reader(networks.OptimismMainnet)
	require.NoError(t, err)
	second, err := a.reader(networks.OptimismMainnet)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestAppRanker(t *testing.T) {
	a, err := newApp(testConfig(), zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, a.ranker(networks.OptimismMainnet))
	assert.Nil(t, a.ranker(networks.EthereumMainnet))
}

func TestAppMachine_UnknownFlow(t *testing.T) {
	cfg := testConfig()
	cfg.Flows = []string{"op", "solana"}
	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = a.machine()
	assert.ErrorIs(t, err, networks.ErrNetworkNotFound)
}

func TestAppNodeStatus(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":"0x10"}`))
	}))
	defer node.Close()

	a, err := newApp(testConfig(), zap.NewNop())
	require.NoError(t, err)
	a.readers[networks.OptimismMainnet.GetChainID()] = reader.NewEthReaderGeneric(map[string]string{"local": node.URL})
	defer a.close()

	assert.Equal(t, "1", a.nodeStatus(context.Background(), networks.OptimismMainnet, false))
	assert.Equal(t, "1, head block 16", a.nodeStatus(context.Background(), networks.OptimismMainnet, true))
}
