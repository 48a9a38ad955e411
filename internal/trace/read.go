package trace

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// ReadFile decodes one trace file. A file cut short by a crash returns the
// entries decoded before the damage along with the error.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, len(out)+1, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Files lists a trace directory's files in write order.
func Files(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Verify recomputes the digest chain of entries read in order and returns
// the final digest. The chain starts empty. A run start entry continues the
// chain, or restarts it from empty when the previous run's tail was lost.
func Verify(entries []Entry) (string, error) {
	var prev, zero [32]byte
	for i, e := range entries {
		next, err := chain(prev, e)
		if err != nil {
			return "", err
		}
		got := hex.EncodeToString(next[:])
		if got != e.Digest && e.Start && prev != zero {
			if next, err = chain(zero, e); err != nil {
				return "", err
			}
			got = hex.EncodeToString(next[:])
		}
		if got != e.Digest {
			return "", fmt.Errorf("trace: digest mismatch at entry %d (seq %d)", i, e.Seq)
		}
		prev = next
	}
	return hex.EncodeToString(prev[:]), nil
}

// Runs counts the run start entries.
func Runs(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Start {
			n++
		}
	}
	return n
}
