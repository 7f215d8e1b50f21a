package gamereview

import "github.com/discochess/gamereview/internal/classify"

// MoveRecord is the analysis result for one ply. Records are created
// once during analysis and immutable thereafter.
type MoveRecord struct {
	// Ply is the zero-based half-move index.
	Ply int `json:"ply"`

	// IsWhite reports which side played the move.
	IsWhite bool `json:"isWhite"`

	SAN string `json:"san"`
	UCI string `json:"uci"`

	// FENBefore and FEN are the positions either side of the move.
	// FEN of ply i equals FENBefore of ply i+1.
	FENBefore string `json:"fenBefore"`
	FEN       string `json:"fen"`

	// Evaluation is the centipawn score after the move, from White's
	// perspective. Mates are clamped to ±10000.
	Evaluation int `json:"evaluation"`

	// CPLoss is the centipawn loss relative to the best move, oriented
	// to the mover and floored at zero. Retained for display; accuracy
	// is computed from win-probability loss.
	CPLoss int `json:"cpLoss"`

	Classification classify.Label `json:"classification"`

	// BestMoveUCI is the engine's preferred move, populated only for
	// labels where showing the better option is useful.
	BestMoveUCI *string `json:"bestMoveUci,omitempty"`

	// Clock is the mover's remaining time as recorded in the PGN, if any.
	Clock *string `json:"clock,omitempty"`

	// MoveNumber is the one-based full-move number (ply/2 + 1).
	MoveNumber int `json:"moveNumber"`
}

// Tally counts classifications for one side. Counts across all labels
// sum to the side's total move count.
type Tally struct {
	Brilliant  int `json:"brilliant"`
	Great      int `json:"great"`
	Best       int `json:"best"`
	Excellent  int `json:"excellent"`
	Good       int `json:"good"`
	Book       int `json:"book"`
	Inaccuracy int `json:"inaccuracy"`
	Mistake    int `json:"mistake"`
	Miss       int `json:"miss"`
	Blunder    int `json:"blunder"`
}

// Add increments the count for a label.
func (t *Tally) Add(label classify.Label) {
	switch label {
	case classify.Brilliant:
		t.Brilliant++
	case classify.Great:
		t.Great++
	case classify.Best:
		t.Best++
	case classify.Excellent:
		t.Excellent++
	case classify.Good:
		t.Good++
	case classify.Book:
		t.Book++
	case classify.Inaccuracy:
		t.Inaccuracy++
	case classify.Mistake:
		t.Mistake++
	case classify.Miss:
		t.Miss++
	case classify.Blunder:
		t.Blunder++
	}
}

// Total returns the number of counted moves.
func (t *Tally) Total() int {
	return t.Brilliant + t.Great + t.Best + t.Excellent + t.Good +
		t.Book + t.Inaccuracy + t.Mistake + t.Miss + t.Blunder
}

// GameReport is the aggregate result of analyzing one game.
type GameReport struct {
	// PGN echoes the analyzed game record.
	PGN string `json:"pgn"`

	// Accuracy is the unweighted mean of both sides' accuracies.
	Accuracy      float64 `json:"accuracy"`
	WhiteAccuracy float64 `json:"whiteAccuracy"`
	BlackAccuracy float64 `json:"blackAccuracy"`

	WhiteRating int `json:"whiteRating"`
	BlackRating int `json:"blackRating"`

	WhiteClassifications Tally `json:"whiteClassifications"`
	BlackClassifications Tally `json:"blackClassifications"`

	// Game metadata, copied verbatim from the PGN tags.
	WhitePlayer string `json:"whitePlayer"`
	BlackPlayer string `json:"blackPlayer"`
	WhiteElo    string `json:"whiteElo"`
	BlackElo    string `json:"blackElo"`
	TimeControl string `json:"timeControl"`

	// Moves is the full move list ordered by ply.
	Moves []MoveRecord `json:"moves"`
}

// PVLine is one candidate line in a single-position evaluation.
type PVLine struct {
	// Evaluation is the line's score in centipawns.
	Evaluation int `json:"evaluation"`

	// Moves is the principal variation in UCI notation.
	Moves []string `json:"moves"`
}

// PositionReport is the result of evaluating a single position.
type PositionReport struct {
	// Evaluation is the best line's score in centipawns.
	Evaluation int `json:"evaluation"`

	// BestMove is the engine's preferred move in UCI notation, empty if
	// the engine reported none.
	BestMove string `json:"bestMove,omitempty"`

	// PVLines holds all candidate lines when more than one was requested.
	PVLines []PVLine `json:"pvLines,omitempty"`
}
