package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/meme-bots/lp-cycler/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCaller struct {
	out  []interface{}
	err  error
	reqs []*types.CallRequest
}

func (c *stubCaller) Call(_ context.Context, req *types.CallRequest) ([]interface{}, error) {
	c.reqs = append(c.reqs, req)
	return c.out, c.err
}

const spiral = "0x6aedb157b9ca86e32200857aa2579d47098ace39"

func TestGetNegativeSupply(t *testing.T) {
	raw, _ := new(big.Int).SetString("1200123456789", 10)
	caller := &stubCaller{out: []interface{}{raw}}
	o := NewSupplyOracle(caller, spiral, 9)

	v, err := o.GetNegativeSupply(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.RequireFromString("1200.123456789")), "got %s", v)

	require.Len(t, caller.reqs, 1)
	assert.Equal(t, spiral, caller.reqs[0].Contract)
	assert.Equal(t, "negativeSupply()", caller.reqs[0].Signature)
	assert.Equal(t, []string{"uint256"}, caller.reqs[0].Outputs)
	assert.Empty(t, caller.reqs[0].Args)
}

func TestGetNegativeSupply_NoCaching(t *testing.T) {
	caller := &stubCaller{out: []interface{}{big.NewInt(1)}}
	o := NewSupplyOracle(caller, spiral, 9)

	for i := 0; i < 3; i++ {
		_, err := o.GetNegativeSupply(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, caller.reqs, 3)
}

func TestGetNegativeSupply_PropagatesError(t *testing.T) {
	boom := errors.New("connection refused")
	o := NewSupplyOracle(&stubCaller{err: boom}, spiral, 9)

	_, err := o.GetNegativeSupply(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestGetNegativeSupply_UnexpectedOutput(t *testing.T) {
	for _, out := range [][]interface{}{
		nil,
		{"1200"},
		{big.NewInt(1), big.NewInt(2)},
	} {
		o := NewSupplyOracle(&stubCaller{out: out}, spiral, 9)
		_, err := o.GetNegativeSupply(context.Background())
		assert.ErrorIs(t, err, types.ErrUnexpectedOutput)
	}
}
