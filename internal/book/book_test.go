package book

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestIndex_AddLine(t *testing.T) {
	ix := NewIndex()
	ix.AddLine("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 1-0")

	// Every prefix of the line is a member.
	line := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6"}
	for i := 1; i <= len(line); i++ {
		if !ix.Contains(line[:i]) {
			t.Errorf("Contains(%v) = false, want true", line[:i])
		}
	}

	// The result token is not a move.
	if ix.Contains(append(append([]string{}, line...), "1-0")) {
		t.Error("Contains() matched a result token")
	}
}

func TestIndex_BlackEllipsisNumbers(t *testing.T) {
	ix := NewIndex()
	ix.AddLine("1. d4 1... d5 2. c4 2... e6")

	if !ix.Contains([]string{"d4", "d5", "c4", "e6"}) {
		t.Error("Contains() = false, want true after stripping ellipsis numbers")
	}
}

func TestIndex_ExactMatchOnly(t *testing.T) {
	ix := NewIndex()
	ix.AddLine("1. e4 e5 2. Nf3")

	if ix.Contains([]string{"e4", "c5"}) {
		t.Error("Contains() matched a diverging line")
	}
	if ix.Contains([]string{"e5", "e4"}) {
		t.Error("Contains() matched out-of-order moves")
	}
	if ix.Contains(nil) {
		t.Error("Contains(nil) = true, want false")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	tsv := "A00\tTest Opening\t1. e4 e5 2. Nf3 Nc6\nB00\tOther\t1. d4 d5 *\n"
	if err := os.WriteFile(filepath.Join(dir, "a.tsv"), []byte(tsv), 0o644); err != nil {
		t.Fatal(err)
	}

	// A compressed file alongside the plain one.
	gz, err := os.Create(filepath.Join(dir, "b.tsv.gz"))
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(gz)
	if _, err := zw.Write([]byte("C00\tFrench\t1. e4 e6\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	// And one junk file that must not derail loading.
	if err := os.WriteFile(filepath.Join(dir, "short.tsv"), []byte("onlyonecolumn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ix := Load(dir, nil)

	for _, line := range [][]string{
		{"e4"},
		{"e4", "e5", "Nf3", "Nc6"},
		{"d4", "d5"},
		{"e4", "e6"},
	} {
		if !ix.Contains(line) {
			t.Errorf("Contains(%v) = false, want true", line)
		}
	}
}

func TestLoad_MissingDirIsEmpty(t *testing.T) {
	ix := Load(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if ix.Contains([]string{"e4"}) {
		t.Error("Contains() = true on empty index")
	}
}

// BenchmarkContains measures prefix lookup against a small index.
func BenchmarkContains(b *testing.B) {
	ix := NewIndex()
	ix.AddLine("1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6")
	line := []string{"e4", "e5", "Nf3", "Nc6"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Contains(line)
	}
}
