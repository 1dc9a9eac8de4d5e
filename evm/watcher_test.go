package evm

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
)

// rpcNode answers every JSON-RPC request with result.
func rpcNode(t *testing.T, hits *atomic.Int64, result string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWatcher(t *testing.T) {
	var hits atomic.Int64
	srv := rpcNode(t, &hits, "0x3b9aca00")

	rpcClient, err := dial(context.Background(), srv.URL, 100)
	require.NoError(t, err)
	client := ethclient.NewClient(rpcClient)
	defer client.Close()

	w := NewWatcher(client, time.Hour, zaptest.NewLogger(t))
	assert.Equal(t, int64(0), w.GetGasPrice().Int64())

	require.NoError(t, w.Start())
	assert.Error(t, w.Start())

	require.Eventually(t, func() bool {
		return w.GetGasPrice().Cmp(big.NewInt(1_000_000_000)) == 0
	}, 5*time.Second, 10*time.Millisecond)

	w.GetGasPrice().SetInt64(0)
	assert.Equal(t, int64(1_000_000_000), w.GetGasPrice().Int64())

	require.NoError(t, w.Close())
	assert.Error(t, w.Close())
	assert.Equal(t, int64(1), hits.Load())
}

func TestWatcher_CloseBeforeStart(t *testing.T) {
	w := NewWatcher(nil, time.Second, zaptest.NewLogger(t))
	assert.Error(t, w.Close())
}

func TestLimitedTransport(t *testing.T) {
	var hits atomic.Int64
	srv := rpcNode(t, &hits, "0x3b9aca00")

	client := &http.Client{Transport: &limitedTransport{
		base:    http.DefaultTransport,
		limiter: rate.NewLimiter(rate.Every(time.Hour), 1),
	}}
	post := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"eth_gasPrice"}`))
		require.NoError(t, err)
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}

	require.NoError(t, post(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, post(ctx))
	assert.Equal(t, int64(1), hits.Load())
}
