// Package journal appends strategy cycle events to a JSONL file.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Event struct {
	TsMs    int64  `json:"ts_ms"`
	CycleID string `json:"cycle_id,omitempty"`
	Cycle   uint64 `json:"cycle"`
	Event   string `json:"event"`
	Phase   string `json:"phase,omitempty"`
	TxHash  string `json:"tx_hash,omitempty"`
	Pair    string `json:"pair,omitempty"`

	TokenQuantity      string `json:"token_quantity,omitempty"`
	ComparatorQuantity string `json:"comparator_quantity,omitempty"`
	PairQuantity       string `json:"pair_quantity,omitempty"`
	Price              string `json:"price,omitempty"`
	TargetPrice        string `json:"target_price,omitempty"`
	NegativeSupply     string `json:"negative_supply,omitempty"`

	Err string `json:"err,omitempty"`
}

// Writer is safe for concurrent use. A nil *Writer discards events.
type Writer struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
}

// New returns nil when path is blank.
func New(path string) *Writer {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	return &Writer{path: path}
}

func (w *Writer) ensureOpenLocked() error {
	if w.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	w.file = f
	w.w = bufio.NewWriterSize(f, 64*1024)
	return nil
}

// Write appends ev as one line and flushes so tailers see it immediately.
func (w *Writer) Write(ev *Event) error {
	if w == nil {
		return nil
	}
	if ev == nil {
		return fmt.Errorf("journal: nil event")
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureOpenLocked(); err != nil {
		return err
	}

	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	if w.w != nil {
		if err := w.w.Flush(); err != nil {
			firstErr = err
		}
	}
	if w.file != nil {
		if err := w.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	w.w = nil
	w.file = nil

	if firstErr != nil && errors.Is(firstErr, os.ErrClosed) {
		return nil
	}
	return firstErr
}
