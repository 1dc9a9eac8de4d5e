package evm

import (
	"context"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/time/rate"
)

// limitedTransport waits on limiter before every outgoing request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (l *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := l.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return l.base.RoundTrip(req)
}

func newLimitedClient(perSecond int) *http.Client {
	return &http.Client{
		Transport: &limitedTransport{
			base:    http.DefaultTransport,
			limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		},
	}
}

// dial connects to url. HTTP endpoints are throttled to perSecond requests;
// websocket endpoints are used as is.
func dial(ctx context.Context, url string, perSecond int) (*rpc.Client, error) {
	if strings.HasPrefix(url, "http") {
		return rpc.DialOptions(ctx, url, rpc.WithHTTPClient(newLimitedClient(perSecond)))
	}
	return rpc.DialContext(ctx, url)
}
