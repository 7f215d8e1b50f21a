package fen

import (
	"errors"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		fen     string
		want    string
		wantErr bool
	}{
		{
			name: "start position",
			fen:  startFEN,
			want: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		},
		{
			name: "already four fields",
			fen:  "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
			want: "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
		},
		{
			name:    "too few fields",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
			wantErr: true,
		},
		{
			name:    "bad side to move",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
			wantErr: true,
		},
		{
			name:    "bad placement",
			fen:     "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.fen)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFEN) {
					t.Fatalf("Normalize(%q) error = %v, want ErrInvalidFEN", tt.fen, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.fen, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.fen, got, tt.want)
			}
		})
	}
}

func TestParseMaterial_StartPosition(t *testing.T) {
	m, err := ParseMaterial(startFEN)
	if err != nil {
		t.Fatalf("ParseMaterial() error = %v", err)
	}

	if m.WhitePawns != 8 || m.BlackPawns != 8 {
		t.Errorf("pawns = %d/%d, want 8/8", m.WhitePawns, m.BlackPawns)
	}
	if m.WhiteQueens != 1 || m.BlackQueens != 1 {
		t.Errorf("queens = %d/%d, want 1/1", m.WhiteQueens, m.BlackQueens)
	}
	if got := m.Balance(true); got != 0 {
		t.Errorf("Balance(white) = %d, want 0", got)
	}
}

func TestMaterial_Balance(t *testing.T) {
	// Black is missing the queen: +9 points for White.
	fen := "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	m, err := ParseMaterial(fen)
	if err != nil {
		t.Fatalf("ParseMaterial() error = %v", err)
	}

	if got := m.Balance(true); got != 9 {
		t.Errorf("Balance(white) = %d, want 9", got)
	}
	if got := m.Balance(false); got != -9 {
		t.Errorf("Balance(black) = %d, want -9", got)
	}
}

func TestParseMaterial_Invalid(t *testing.T) {
	if _, err := ParseMaterial("rnbq!bnr/pppppppp w"); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("ParseMaterial() error = %v, want ErrInvalidFEN", err)
	}
}

func TestSideToMove(t *testing.T) {
	if side, err := SideToMove(startFEN); err != nil || side != "w" {
		t.Errorf("SideToMove() = %q, %v, want \"w\", nil", side, err)
	}
	if side, err := SideToMove("8/8/8/8/8/8/8/8 b - -"); err != nil || side != "b" {
		t.Errorf("SideToMove() = %q, %v, want \"b\", nil", side, err)
	}
	if _, err := SideToMove("8/8/8/8/8/8/8/8"); !errors.Is(err, ErrInvalidFEN) {
		t.Errorf("SideToMove() error = %v, want ErrInvalidFEN", err)
	}
}

func BenchmarkParseMaterial(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := ParseMaterial(startFEN); err != nil {
			b.Fatal(err)
		}
	}
}
