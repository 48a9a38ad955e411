// Package trace records every arbitration decision as compressed JSON lines,
// rotated hourly. Each entry carries a running blake3 digest over all entries
// before it, so a trace can be checked for gaps or edits after the fact. A new
// Writer continues the chain of the trace already on disk and marks its first
// entry as the start of a run.
package trace

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// Entry is one arbitration tick as seen by the host loop. Start is set on the
// first entry a Writer records.
type Entry struct {
	WorldTick    uint64   `json:"world_tick"`
	Seq          uint64   `json:"seq"`
	Process      string   `json:"process,omitempty"`
	Priority     *float64 `json:"priority,omitempty"`
	Command      string   `json:"command,omitempty"`
	Goal         string   `json:"goal,omitempty"`
	CalcFailed   bool     `json:"calc_failed,omitempty"`
	SafeToCancel bool     `json:"safe_to_cancel"`
	Paused       bool     `json:"paused,omitempty"`
	Tasks        int      `json:"tasks,omitempty"`
	Cancels      int      `json:"cancels,omitempty"`
	Start        bool     `json:"start,omitempty"`
	Digest       string   `json:"digest"`
}

// Writer appends entries to <dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst.
type Writer struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
	digest  [32]byte

	// started is set once the chain is resumed from disk, recorded once
	// the first entry is written.
	started  bool
	recorded bool
}

func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix, now: time.Now}
}

// Record stamps e with the running digest and appends it.
func (w *Writer) Record(e Entry) (Entry, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		w.digest = w.resumeDigest()
		w.started = true
	}
	e.Start = !w.recorded
	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return e, err
		}
	}
	next, err := chain(w.digest, e)
	if err != nil {
		return e, err
	}
	e.Digest = hex.EncodeToString(next[:])
	b, err := json.Marshal(e)
	if err != nil {
		return e, err
	}
	if _, err := w.w.Write(b); err != nil {
		return e, err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return e, err
	}
	if err := w.w.Flush(); err != nil {
		return e, err
	}
	if err := w.enc.Flush(); err != nil {
		return e, err
	}
	w.digest = next
	w.recorded = true
	return e, nil
}

// Digest is the running digest after the last recorded entry.
func (w *Writer) Digest() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return hex.EncodeToString(w.digest[:])
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// resumeDigest is the digest of the newest readable entry already on disk, or
// zero when there is none.
func (w *Writer) resumeDigest() [32]byte {
	var zero [32]byte
	files, err := Files(w.baseDir, w.prefix)
	if err != nil {
		return zero
	}
	for i := len(files) - 1; i >= 0; i-- {
		entries, _ := ReadFile(files[i])
		for j := len(entries) - 1; j >= 0; j-- {
			if d, ok := decodeDigest(entries[j].Digest); ok {
				return d
			}
		}
	}
	return zero
}

func decodeDigest(s string) ([32]byte, bool) {
	var d [32]byte
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(d) {
		return d, false
	}
	copy(d[:], b)
	return d, true
}

func chain(prev [32]byte, e Entry) ([32]byte, error) {
	e.Digest = ""
	b, err := json.Marshal(e)
	if err != nil {
		return prev, err
	}
	return blake3.Sum256(append(prev[:], b...)), nil
}

func (w *Writer) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	p := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f, w.enc = f, enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	w.curHour = hour
	return nil
}

func (w *Writer) closeLocked() error {
	var err error
	if w.w != nil {
		_ = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		err = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.curHour = ""
	return err
}

func (w *Writer) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}
