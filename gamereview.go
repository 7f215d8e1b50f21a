// Package gamereview turns recorded chess games into per-move quality
// reports: each move is labeled (Brilliant, Great, Best, … Blunder) by
// how much win probability it gave up against the engine's best line,
// and per-side accuracy and estimated ratings are aggregated from the
// labeled moves.
//
// Example usage:
//
//	analyzer, err := gamereview.New(
//	    gamereview.WithBookDir("/path/to/openings"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer analyzer.Close()
//
//	report, err := analyzer.Analyze(ctx, pgnText, 12)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("White accuracy: %.1f%%\n", report.WhiteAccuracy)
package gamereview

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/accuracy"
	"github.com/discochess/gamereview/internal/book"
	"github.com/discochess/gamereview/internal/classify"
	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/evalcache"
	"github.com/discochess/gamereview/internal/fen"
	"github.com/discochess/gamereview/internal/stats"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrParse indicates the game record or position could not be decoded.
	ErrParse = errors.New("gamereview: cannot parse game record")

	// ErrEngineUnavailable indicates no evaluator could be started.
	ErrEngineUnavailable = errors.New("gamereview: engine unavailable")

	// ErrClosed indicates the analyzer has been closed.
	ErrClosed = errors.New("gamereview: analyzer closed")
)

// multiPV is the number of candidate lines requested per position; the
// extra lines feed only-move detection.
const multiPV = 3

// onlyMoveGap is the win-probability margin over the second-best line
// beyond which the best move counts as forced.
const onlyMoveGap = 0.25

// opponentBlunderCP is the previous-ply centipawn loss beyond which the
// opponent is considered to have blundered.
const opponentBlunderCP = 160

// clockPattern matches embedded PGN clock comments like [%clk 0:02:59.9].
var clockPattern = regexp.MustCompile(`\[%clk\s+([\d:.]+)\]`)

// showBestFor are the labels whose move records carry the engine's
// preferred move for display.
var showBestFor = map[classify.Label]bool{
	classify.Great:      true,
	classify.Excellent:  true,
	classify.Inaccuracy: true,
	classify.Mistake:    true,
	classify.Miss:       true,
	classify.Blunder:    true,
}

// Analyzer produces game reports. It is safe for concurrent use: each
// analysis owns its own evaluator session, and the shared book index,
// evaluation cache, and stats collector tolerate concurrent access.
type Analyzer struct {
	book     *book.Index
	resolver *engine.Resolver
	factory  EvaluatorFactory
	cache    *evalcache.Cache
	depth    int
	stats    stats.Collector
	logger   *zap.Logger
	closed   atomic.Bool
}

// New creates a new Analyzer with the given options.
// If no options are provided, sensible defaults are used.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	ix := cfg.book
	if ix == nil {
		if cfg.bookDir != "" {
			ix = book.Load(cfg.bookDir, cfg.logger.Named("book"))
		} else {
			ix = book.NewIndex()
		}
	}

	cache, err := evalcache.New(cfg.cacheSize, cfg.stats)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation cache: %w", err)
	}

	resolverCfg := cfg.resolver
	resolverCfg.Logger = cfg.logger.Named("engine")
	a := &Analyzer{
		book:     ix,
		resolver: engine.NewResolver(resolverCfg),
		factory:  cfg.factory,
		cache:    cache,
		depth:    cfg.depth,
		stats:    cfg.stats,
		logger:   cfg.logger,
	}

	if a.factory == nil {
		a.factory = a.openSession
	}

	a.logger.Debug("analyzer initialized",
		zap.Int("depth", a.depth),
		zap.Int("bookPrefixes", ix.Len()),
	)

	return a, nil
}

// openSession is the default evaluator factory: resolve a binary and
// start one engine session.
func (a *Analyzer) openSession(ctx context.Context) (Evaluator, error) {
	path, err := a.resolver.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	sess, err := engine.NewSession(path, a.logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return sess, nil
}

// Analyze evaluates every position of the game in pgnText at the given
// depth and returns the full report. A depth below 1 uses the analyzer
// default.
//
// Individual position evaluations that fail are absorbed as neutral
// (zero score) evaluations so the report always has one record per ply;
// parse and engine-startup failures abort the request.
func (a *Analyzer) Analyze(ctx context.Context, pgnText string, depth int) (*GameReport, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	if depth < 1 {
		depth = a.depth
	}
	start := time.Now()

	parsed, err := parseGame(pgnText)
	if err != nil {
		return nil, err
	}

	evaluator, err := a.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer evaluator.Close()

	evals, err := a.evaluateAll(ctx, evaluator, parsed.fens, depth)
	if err != nil {
		return nil, err
	}

	report := a.buildReport(parsed, evals)

	a.stats.IncCounter(stats.MetricGames, 1)
	a.stats.ObserveHistogram(stats.MetricAnalysisSeconds, time.Since(start).Seconds())
	a.logger.Debug("game analyzed",
		zap.Int("plies", len(parsed.moves)),
		zap.Int("depth", depth),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report, nil
}

// Evaluate runs the engine on a single position. With lines > 1 the
// report carries the full candidate list. When normalize is false the
// scores are flipped to the mover's perspective if Black is to move.
func (a *Analyzer) Evaluate(ctx context.Context, fenStr string, depth, lines int, normalize bool) (*PositionReport, error) {
	if a.closed.Load() {
		return nil, ErrClosed
	}
	if depth < 1 {
		depth = a.depth
	}
	if lines < 1 {
		lines = 1
	}

	side, err := fen.SideToMove(fenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	evaluator, err := a.factory(ctx)
	if err != nil {
		return nil, err
	}
	defer evaluator.Close()

	ev, err := a.evaluate(ctx, evaluator, fenStr, depth, lines)
	if err != nil {
		return nil, fmt.Errorf("evaluating position: %w", err)
	}

	flip := !normalize && side == "b"

	report := &PositionReport{
		Evaluation: orient(ev.BestCP(), !flip),
		BestMove:   ev.BestMove(),
	}
	if lines > 1 {
		for _, line := range ev.Lines {
			report.PVLines = append(report.PVLines, PVLine{
				Evaluation: orient(line.CP, !flip),
				Moves:      line.Moves,
			})
		}
	}
	return report, nil
}

// Health reports whether an engine binary can currently be resolved,
// returning its path.
func (a *Analyzer) Health(ctx context.Context) (string, error) {
	if a.closed.Load() {
		return "", ErrClosed
	}
	path, err := a.resolver.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return path, nil
}

// Book returns the opening book index used by this analyzer.
func (a *Analyzer) Book() *book.Index {
	return a.book
}

// Close releases the analyzer. After Close, the analyzer should not be used.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// parsedGame holds the decoded move and position sequences of one game.
type parsedGame struct {
	pgn    string
	moves  []*chess.Move
	sans   []string
	ucis   []string
	fens   []string // len(moves) + 1, fens[i] is the position before move i
	whites []bool
	clocks []string

	whitePlayer, blackPlayer string
	whiteElo, blackElo       string
	timeControl              string
}

// parseGame decodes a PGN into move, SAN/UCI and position sequences.
func parseGame(pgnText string) (*parsedGame, error) {
	pgnFunc, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	game := chess.NewGame(pgnFunc)

	moves := game.Moves()
	positions := game.Positions()
	if len(positions) != len(moves)+1 {
		return nil, fmt.Errorf("%w: inconsistent move list", ErrParse)
	}

	p := &parsedGame{
		pgn:         pgnText,
		moves:       moves,
		clocks:      clockPattern.FindAllString(pgnText, -1),
		whitePlayer: tagOr(game, "White", "White"),
		blackPlayer: tagOr(game, "Black", "Black"),
		whiteElo:    tagOr(game, "WhiteElo", "?"),
		blackElo:    tagOr(game, "BlackElo", "?"),
		timeControl: tagOr(game, "TimeControl", "-"),
	}

	notation := chess.AlgebraicNotation{}
	for i, move := range moves {
		p.whites = append(p.whites, positions[i].Turn() == chess.White)
		p.sans = append(p.sans, notation.Encode(positions[i], move))
		p.ucis = append(p.ucis, move.String())
		p.fens = append(p.fens, positions[i].String())
	}
	p.fens = append(p.fens, positions[len(moves)].String())

	// Reduce clock comments to their time strings.
	for i, clk := range p.clocks {
		if m := clockPattern.FindStringSubmatch(clk); m != nil {
			p.clocks[i] = m[1]
		}
	}

	return p, nil
}

// tagOr returns a PGN tag value or a fallback when the tag is absent.
func tagOr(game *chess.Game, key, fallback string) string {
	if tp := game.GetTagPair(key); tp != nil && tp.Value != "" {
		return tp.Value
	}
	return fallback
}

// evaluateAll evaluates every position in order with multiPV candidate
// lines, consulting the cache first. Per-position failures are absorbed
// as neutral evaluations; only context cancellation aborts.
func (a *Analyzer) evaluateAll(ctx context.Context, evaluator Evaluator, fens []string, depth int) ([]engine.Evaluation, error) {
	evals := make([]engine.Evaluation, len(fens))
	for i, fenStr := range fens {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis aborted at position %d: %w", i, err)
		}

		ev, err := a.evaluate(ctx, evaluator, fenStr, depth, multiPV)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("analysis aborted at position %d: %w", i, err)
			}
			// A lost evaluation must not abort the game analysis.
			a.stats.IncCounter(stats.MetricEvalFailures, 1)
			a.logger.Warn("position evaluation failed",
				zap.Int("position", i),
				zap.Error(err),
			)
			ev = engine.Evaluation{}
		}
		evals[i] = ev
	}
	return evals, nil
}

// evaluate runs one position through the cache and the evaluator.
func (a *Analyzer) evaluate(ctx context.Context, evaluator Evaluator, fenStr string, depth, lines int) (engine.Evaluation, error) {
	key := evalcache.Key(fenStr, depth, lines)
	if ev, ok := a.cache.Get(key); ok {
		return ev, nil
	}

	a.stats.IncCounter(stats.MetricEvaluations, 1)
	ev, err := evaluator.Analyze(ctx, fenStr, depth, lines)
	if err != nil {
		return engine.Evaluation{}, err
	}

	a.cache.Add(key, ev)
	return ev, nil
}

// buildReport classifies every ply and aggregates the per-side report.
// Classification is strictly sequential: opponent-blunder detection
// reads the previous ply and accuracy accumulation is a running sum.
func (a *Analyzer) buildReport(p *parsedGame, evals []engine.Evaluation) *GameReport {
	report := &GameReport{
		PGN:         p.pgn,
		WhitePlayer: p.whitePlayer,
		BlackPlayer: p.blackPlayer,
		WhiteElo:    p.whiteElo,
		BlackElo:    p.blackElo,
		TimeControl: p.timeControl,
	}

	var white, black accuracy.Tracker

	for i := range p.moves {
		isWhite := p.whites[i]
		before, after := evals[i], evals[i+1]

		signals := a.deriveSignals(p, evals, i)
		label := classify.Classify(signals)

		// Opening book membership overrides the cascade.
		if a.book.Contains(p.sans[:i+1]) {
			label = classify.Book
			a.stats.IncCounter(stats.MetricBookMoves, 1)
		}

		tracker := &white
		tally := &report.WhiteClassifications
		if !isWhite {
			tracker = &black
			tally = &report.BlackClassifications
		}
		// Book moves are exempt from accuracy accounting but still tallied.
		if label != classify.Book {
			tracker.Observe(signals.Loss())
		}
		tally.Add(label)
		a.stats.IncCounter(stats.MetricMoves, 1)

		var bestMove *string
		if showBestFor[label] {
			if bm := before.BestMove(); bm != "" {
				bestMove = &bm
			}
		}
		var clock *string
		if i < len(p.clocks) {
			clock = &p.clocks[i]
		}

		report.Moves = append(report.Moves, MoveRecord{
			Ply:            i,
			IsWhite:        isWhite,
			SAN:            p.sans[i],
			UCI:            p.ucis[i],
			FENBefore:      p.fens[i],
			FEN:            p.fens[i+1],
			Evaluation:     after.BestCP(),
			CPLoss:         centipawnLoss(before.BestCP(), after.BestCP(), isWhite),
			Classification: label,
			BestMoveUCI:    bestMove,
			Clock:          clock,
			MoveNumber:     i/2 + 1,
		})
	}

	report.WhiteAccuracy = white.Accuracy()
	report.BlackAccuracy = black.Accuracy()
	report.Accuracy = accuracy.Overall(report.WhiteAccuracy, report.BlackAccuracy)
	report.WhiteRating = accuracy.EstimateRating(report.WhiteAccuracy)
	report.BlackRating = accuracy.EstimateRating(report.BlackAccuracy)

	return report
}

// deriveSignals computes the classifier inputs for ply i.
func (a *Analyzer) deriveSignals(p *parsedGame, evals []engine.Evaluation, i int) classify.Signals {
	isWhite := p.whites[i]
	before, after := evals[i], evals[i+1]

	s := classify.Signals{
		WPStart:   classify.WinProb(orient(before.BestCP(), isWhite)),
		WPAfter:   classify.WinProb(orient(after.BestCP(), isWhite)),
		IsBestUCI: p.ucis[i] != "" && p.ucis[i] == before.BestMove(),
	}

	// Only-move: the best line towers over the second candidate.
	if len(before.Lines) > 1 {
		secondWP := classify.WinProb(orient(before.Lines[1].CP, isWhite))
		s.IsOnlyMove = s.WPStart-secondWP > onlyMoveGap
	}

	// Sacrifice: the mover gave up net material.
	matBefore, errBefore := fen.ParseMaterial(p.fens[i])
	matAfter, errAfter := fen.ParseMaterial(p.fens[i+1])
	if errBefore == nil && errAfter == nil {
		s.IsSacrifice = matAfter.Balance(isWhite) < matBefore.Balance(isWhite)
	}

	// Opponent blunder: the previous ply lost heavily for the other side.
	if i > 0 {
		prevLoss := centipawnLoss(evals[i-1].BestCP(), before.BestCP(), !isWhite)
		s.OpponentBlundered = prevLoss > opponentBlunderCP
	}

	return s
}

// centipawnLoss is the mover-oriented drop from the best available score
// to the obtained score, floored at zero.
func centipawnLoss(bestCP, actualCP int, isWhite bool) int {
	loss := bestCP - actualCP
	if !isWhite {
		loss = -loss
	}
	if loss < 0 {
		return 0
	}
	return loss
}

// orient converts a White-perspective centipawn score to the given
// side's perspective.
func orient(cp int, forWhite bool) int {
	if forWhite {
		return cp
	}
	return -cp
}
