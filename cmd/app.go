package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/config"
	"github.com/send2-name/delegate2name-api/delegate"
	"github.com/send2-name/delegate2name-api/frame"
	"github.com/send2-name/delegate2name-api/identity"
	"github.com/send2-name/delegate2name-api/networks"
	"github.com/send2-name/delegate2name-api/util/monitor"
	"github.com/send2-name/delegate2name-api/util/reader"
)

// externalTimeout bounds every call to a third party API.
const externalTimeout = 10 * time.Second

// loadConfig reads .env, the config file and the environment, then applies
// the persistent flags.
func loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

func newLogger(format string) (*zap.Logger, error) {
	if format == "console" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// app holds every long lived component, built once from the config.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	registry *networks.Registry
	readers  map[uint64]*reader.EthReader
	client   *http.Client
}

func newApp(cfg config.Config, log *zap.Logger) (*app, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		readers:  map[uint64]*reader.EthReader{},
		client:   &http.Client{Timeout: externalTimeout},
	}, nil
}

// reader returns the shared multi node reader of n.
func (a *app) reader(n networks.Network) (*reader.EthReader, error) {
	if r, found := a.readers[n.GetChainID()]; found {
		return r, nil
	}
	nodes := a.cfg.NodesFor(n)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("network '%s' has no RPC node", n.GetName())
	}
	r := reader.NewEthReaderGeneric(nodes)
	a.readers[n.GetChainID()] = r
	return r, nil
}

// close drops the node connections of every reader.
func (a *app) close() {
	for _, r := range a.readers {
		r.Close()
	}
}

func (a *app) network(slug string) (networks.Network, error) {
	return a.registry.GetNetwork(slug)
}

func (a *app) resolver() *identity.Resolver {
	settings := identity.Settings{
		AirstackURL:  a.cfg.AirstackURL,
		AirstackKey:  a.cfg.AirstackAPIKey,
		ENSDataURL:   a.cfg.ENSDataURL,
		MoralisURL:   a.cfg.MoralisURL,
		MoralisKey:   a.cfg.MoralisAPIKey,
		StageTimeout: a.cfg.StageTimeout,
		NameSuffixes: a.cfg.NameSuffixes,
		HTTPClient:   a.client,
	}
	// ENS lives on mainnet. Without a mainnet node the on-chain stages are
	// skipped.
	if mainnet, err := a.registry.GetNetworkByID(networks.EthereumMainnet.GetChainID()); err == nil {
		if r, err := a.reader(mainnet); err == nil {
			settings.ENSReader = r
			settings.ENSRegistry = common.HexToAddress(networks.ENSRegistry)
		} else {
			a.log.Warn("on-chain ENS lookups disabled", zap.Error(err))
		}
	}
	return identity.NewDefaultResolver(settings, a.log.Named("identity"))
}

// ranker breaks fid ties by the delegate token balance on n. Networks
// without a multicall contract get none.
func (a *app) ranker(n networks.Network) identity.BalanceRanker {
	if n.MultiCallContract() == "" || !n.HasDelegateToken() {
		return nil
	}
	r, err := a.reader(n)
	if err != nil {
		return nil
	}
	return identity.NewTokenBalanceRanker(r, common.HexToAddress(n.MultiCallContract()), n.GetDelegateTokenAddress())
}

// delegates builds the delegate service over every flow network.
func (a *app) delegates(flows []networks.Network) (*delegate.Service, error) {
	readers := map[uint64]delegate.ContractReader{}
	for _, n := range flows {
		r, err := a.reader(n)
		if err != nil {
			return nil, err
		}
		readers[n.GetChainID()] = r
	}
	return delegate.NewService(readers, a.log.Named("delegate")), nil
}

func (a *app) flowNetworks() ([]networks.Network, error) {
	result := []networks.Network{}
	for _, slug := range a.cfg.Flows {
		n, err := a.network(slug)
		if err != nil {
			return nil, fmt.Errorf("flow %q: %w", slug, err)
		}
		result = append(result, n)
	}
	return result, nil
}

// machine wires the frame state machine for every configured flow.
func (a *app) machine() (*frame.Machine, error) {
	flowNetworks, err := a.flowNetworks()
	if err != nil {
		return nil, err
	}
	delegates, err := a.delegates(flowNetworks)
	if err != nil {
		return nil, err
	}

	flows := []frame.Flow{}
	for _, n := range flowNetworks {
		r, err := a.reader(n)
		if err != nil {
			return nil, err
		}
		flows = append(flows, frame.Flow{
			Network: n,
			Poller:  monitor.NewGenericTxMonitor(r),
			Ranker:  a.ranker(n),
		})
	}

	sharing := frame.ShareConfig{ComposeURL: a.cfg.Share.ComposeURL, Credit: a.cfg.Share.Credit}
	if sharing.Credit == "" {
		sharing.Credit = frame.DefaultShareCredit
	}
	deps := frame.Deps{
		Resolver:  a.resolver(),
		Delegates: delegates,
		Sharing:   sharing,
		Log:       a.log.Named("frame"),
	}
	if a.cfg.ValidateSignatures {
		deps.Validator = frame.NewHubValidator(a.cfg.HubValidateURL, a.cfg.AirstackAPIKey, a.client)
	}
	return frame.NewMachine(deps, flows...), nil
}
