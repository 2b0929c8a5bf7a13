package server

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/send2-name/delegate2name-api/delegate"
	"github.com/send2-name/delegate2name-api/frame"
	"github.com/send2-name/delegate2name-api/identity"
	"github.com/send2-name/delegate2name-api/networks"
	"github.com/send2-name/delegate2name-api/util/monitor"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000A11CE")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000B0B")
)

type stubResolver struct{}

func (stubResolver) ResolveByAddress(ctx context.Context, addr common.Address) identity.Record {
	switch addr {
	case alice:
		return identity.Record{Address: alice, FarcasterHandle: "alice", Source: identity.SocialGraph}
	case bob:
		return identity.Record{Address: bob, NameServiceName: "bob.eth", Source: identity.NameService}
	}
	return identity.UnresolvedRecord(addr)
}

func (r stubResolver) ResolveByName(ctx context.Context, name string) identity.Record {
	if name == "bob.eth" {
		return r.ResolveByAddress(ctx, bob)
	}
	return identity.UnresolvedRecord(common.Address{})
}

func (r stubResolver) ResolveBySocialID(ctx context.Context, fid uint64, ranker identity.BalanceRanker) (identity.Record, error) {
	if fid == 1 {
		return r.ResolveByAddress(ctx, alice), nil
	}
	return identity.UnresolvedRecord(common.Address{}), nil
}

type stubDelegates struct{}

func (stubDelegates) GetDelegate(ctx context.Context, holder common.Address, n networks.Network) delegate.Result {
	if holder == alice {
		return delegate.Result{Success: true, Delegate: &bob}
	}
	return delegate.Result{Success: true}
}

func (stubDelegates) Balance(ctx context.Context, holder common.Address, n networks.Network) (string, error) {
	return "10.5", nil
}

type stubPoller struct{}

func (stubPoller) Poll(ctx context.Context, tx common.Hash) monitor.TxInfo {
	return monitor.TxInfo{Hash: tx, Outcome: monitor.Pending}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	m := frame.NewMachine(frame.Deps{
		Resolver:  stubResolver{},
		Delegates: stubDelegates{},
		Log:       zap.NewNop(),
		Now:       func() time.Time { return time.Unix(1700000000, 0) },
	},
		frame.Flow{Network: networks.OptimismMainnet, Poller: stubPoller{}},
		frame.Flow{Network: networks.ArbitrumMainnet, Poller: stubPoller{}},
	)
	return NewRouter(m, zap.NewNop())
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func meta(property, content string) string {
	return `<meta property="` + property + `" content="` + content + `">`
}

func TestHealth(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "http://localhost:8080/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestIndex(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodGet, "https://frames.example.com/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var index networkIndex
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	require.Len(t, index.Networks, 2)
	assert.Equal(t, "arb", index.Networks[0].Slug)
	assert.Equal(t, "https://frames.example.com/frame/delegate/op/start", index.Networks[1].Start)
}

func TestStart_RendersFrame(t *testing.T) {
	h := newTestRouter(t)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := serve(t, h, method, "http://localhost:8080/frame/delegate/op/start", "")
		require.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

		body := html.UnescapeString(rec.Body.String())
		assert.Contains(t, body, meta("fc:frame", "vNext"))
		assert.Contains(t, body, meta("fc:frame:image", "http://localhost:8080/static/img/delegate/op/start-1.png"))
		assert.Contains(t, body, meta("fc:frame:button:1", "Check My Delegate"))
		assert.Contains(t, body, meta("fc:frame:button:1:action", "post"))
		assert.Contains(t, body, `property="fc:frame:button:1:target" content="http://localhost:8080/frame/delegate/op/delegate?`)
		assert.Contains(t, body, `property="fc:frame:post_url" content="http://localhost:8080/frame/delegate/op/delegate?`)
		assert.NotContains(t, body, "fc:frame:input:text")
	}
}

func TestCheckDelegate_FromPayloadFID(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodPost,
		"https://frames.example.com/frame/delegate/op/delegate",
		`{"untrustedData":{"fid":1,"buttonIndex":1}}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)

	body := html.UnescapeString(rec.Body.String())
	assert.Contains(t, body, meta("fc:frame:button:1", "Submit"))
	assert.Contains(t, body, meta("fc:frame:button:2", "Share"))
	assert.Contains(t, body, meta("fc:frame:button:2:action", "link"))
	assert.Contains(t, body, `content="https://frames.example.com/frame/delegate/op/confirm?`)
	assert.Contains(t, body, "fc:frame:input:text")
}

func TestConfirm_FromInputText(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodPost,
		"http://localhost:8080/frame/delegate/arb/confirm",
		`{"untrustedData":{"fid":1,"inputText":" bob.eth "}}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)

	body := html.UnescapeString(rec.Body.String())
	assert.Contains(t, body, meta("fc:frame:button:1", "Confirm"))
	assert.Contains(t, body, meta("fc:frame:button:1:action", "tx"))
	assert.Contains(t, body, `property="fc:frame:button:1:target" content="http://localhost:8080/frame/delegate/arb/tx-data?`)
	assert.Contains(t, body, `property="fc:frame:button:1:post_url" content="http://localhost:8080/frame/delegate/arb/tx-callback?`)
}

func TestConfirm_NotFoundRendersErrorStep(t *testing.T) {
	rec := serve(t, newTestRouter(t), http.MethodPost,
		"http://localhost:8080/frame/delegate/op/confirm",
		`{"untrustedData":{"inputText":"nobody.eth"}}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)
	body := html.UnescapeString(rec.Body.String())
	assert.Contains(t, body, "Delegate not found")
	assert.Contains(t, body, meta("fc:frame:button:1", "Back to start"))
}

func TestTransactionData(t *testing.T) {
	h := newTestRouter(t)

	rec := serve(t, h, http.MethodPost,
		"http://localhost:8080/frame/delegate/op/tx-data?delegate="+bob.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var tx frame.TxDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, "eth_sendTransaction", tx.Method)
	assert.Equal(t, "eip155:10", tx.ChainID)
	assert.Equal(t, networks.OptimismMainnet.GetDelegateTokenAddress().Hex(), tx.Params.To)
	assert.Equal(t, "0", tx.Params.Value)

	rec = serve(t, h, http.MethodPost, "http://localhost:8080/frame/delegate/op/tx-data?delegate=bob.eth", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionCallback_Pending(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	rec := serve(t, newTestRouter(t), http.MethodPost,
		"http://localhost:8080/frame/delegate/op/tx-callback?delegate="+bob.Hex()+"&dname=bob.eth",
		`{"untrustedData":{"transactionId":"`+hash+`"}}`,
	)
	require.Equal(t, http.StatusOK, rec.Code)
	body := html.UnescapeString(rec.Body.String())
	assert.Contains(t, body, meta("fc:frame:button:1", "Check Again"))
	assert.Contains(t, body, "tx="+hash)
}

func TestShare(t *testing.T) {
	h := newTestRouter(t)

	rec := serve(t, h, http.MethodGet,
		"http://localhost:8080/frame/delegate/op/share?user=alice&delegate=bob.eth&balance=10.5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, html.UnescapeString(rec.Body.String()), meta("fc:frame:button:1", "Check My Delegate"))

	rec = serve(t, h, http.MethodGet, "http://localhost:8080/frame/delegate/op/share?user=alice", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientErrors(t *testing.T) {
	h := newTestRouter(t)

	rec := serve(t, h, http.MethodGet, "http://localhost:8080/frame/delegate/solana/start", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h, http.MethodPost, "http://localhost:8080/frame/delegate/op/delegate", `{"untrustedData":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bad Request", body.Error)

	rec = serve(t, h, http.MethodGet, "http://localhost:8080/frame/delegate/op/tx-data", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(t, h, http.MethodGet, "http://localhost:8080/frame/delegate/op/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "http://localhost:8080/frame/delegate/op/start", nil)
	req.Header.Set("Origin", "https://warpcast.com")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://warpcast.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"http://localhost:8080/x", "http://localhost:8080"},
		{"http://127.0.0.1/x", "http://127.0.0.1"},
		{"http://frames.example.com/x", "https://frames.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BaseURL(httptest.NewRequest(http.MethodGet, tt.target, nil)))
	}
}
