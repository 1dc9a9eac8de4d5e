package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BlankPath(t *testing.T) {
	w := New("  ")
	assert.Nil(t, w)
	assert.NoError(t, w.Write(&Event{Event: "ignored"}))
	assert.NoError(t, w.Close())
}

func TestWriter_AppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cycles.jsonl")
	w := New(path)
	require.NotNil(t, w)

	require.NoError(t, w.Write(&Event{TsMs: 1, Cycle: 1, Event: "phase", Phase: "add_liquidity", PairQuantity: "12.5"}))
	require.NoError(t, w.Write(&Event{TsMs: 2, Cycle: 1, Event: "phase", Phase: "sell", Price: "100"}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		events = append(events, ev)
	}
	require.NoError(t, sc.Err())
	require.Len(t, events, 2)
	assert.Equal(t, "add_liquidity", events[0].Phase)
	assert.Equal(t, "12.5", events[0].PairQuantity)
	assert.Equal(t, "100", events[1].Price)
}

func TestWriter_ReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycles.jsonl")
	w := New(path)
	require.NoError(t, w.Write(&Event{Event: "start"}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Write(&Event{Event: "stop"}))
	require.NoError(t, w.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"event":"start"`)
	assert.Contains(t, string(b), `"event":"stop"`)
}

func TestWriter_NilEvent(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "x.jsonl"))
	assert.Error(t, w.Write(nil))
}
