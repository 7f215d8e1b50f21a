// Package book provides the opening book index: a precomputed set of
// known opening move-prefixes, queried by the exact SAN sequence played
// so far.
package book

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/codec"
)

// moveNumbers matches move-number prefixes such as "1." and "12...".
var moveNumbers = regexp.MustCompile(`\d+\.+`)

// resultTokens are PGN game results, dropped during normalization.
var resultTokens = map[string]bool{
	"1-0": true, "0-1": true, "1/2-1/2": true, "*": true,
}

// Index answers membership queries for opening move sequences.
// It is immutable after construction and safe for unsynchronized
// concurrent reads.
type Index struct {
	lines map[string]struct{}
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{lines: make(map[string]struct{})}
}

// Load builds an index from every .tsv file in dir (optionally compressed
// as .tsv.gz or .tsv.zst). The third tab-separated column of each line is
// the opening's movetext; every non-empty prefix of it is indexed.
//
// Loading is best-effort: a missing directory or unreadable file degrades
// to an empty (or partial) index, and no move is ever classified as a
// book move for the missing data. A nil logger disables logging.
func Load(dir string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	ix := NewIndex()

	for _, pattern := range []string{"*.tsv", "*.tsv.gz", "*.tsv.zst"} {
		paths, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, path := range paths {
			if err := ix.addFile(path); err != nil {
				logger.Warn("skipping opening book file",
					zap.String("path", path),
					zap.Error(err),
				)
			}
		}
	}

	if ix.Len() == 0 {
		logger.Warn("opening book is empty; no moves will be classified as book",
			zap.String("dir", dir),
		)
	} else {
		logger.Debug("opening book loaded",
			zap.String("dir", dir),
			zap.Int("prefixes", ix.Len()),
		)
	}

	return ix
}

func (ix *Index) addFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := codec.ForPath(path).Reader(f)
	if err != nil {
		return err
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) >= 3 {
			ix.AddLine(parts[2])
		}
	}
	return scanner.Err()
}

// AddLine indexes every non-empty SAN prefix of one opening's movetext.
// Move-number prefixes and result tokens are stripped first.
func (ix *Index) AddLine(movetext string) {
	clean := moveNumbers.ReplaceAllString(movetext, "")

	var sans []string
	for _, tok := range strings.Fields(clean) {
		if !resultTokens[tok] {
			sans = append(sans, tok)
		}
	}

	for i := 1; i <= len(sans); i++ {
		ix.lines[strings.Join(sans[:i], " ")] = struct{}{}
	}
}

// Contains reports whether the exact ordered SAN sequence is a known
// opening prefix. No partial or fuzzy matching.
func (ix *Index) Contains(sans []string) bool {
	if len(sans) == 0 {
		return false
	}
	_, ok := ix.lines[strings.Join(sans, " ")]
	return ok
}

// Len returns the number of indexed prefixes.
func (ix *Index) Len() int {
	return len(ix.lines)
}
