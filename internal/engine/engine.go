// Package engine runs a UCI chess engine as a subprocess and exposes
// position evaluations as ordered candidate lines.
//
// All scores are reported in centipawns from White's perspective, with
// forced mates clamped to ±10000.
package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/gamereview/internal/fen"
)

// MateScore is the centipawn value mate scores are clamped to.
const MateScore = 10000

// handshakeTimeout bounds the initial UCI handshake.
const handshakeTimeout = 10 * time.Second

// ErrSessionClosed indicates the session has been closed or its process exited.
var ErrSessionClosed = errors.New("engine: session closed")

// Line is one candidate continuation for a position.
type Line struct {
	// CP is the score in centipawns from White's perspective.
	CP int

	// Moves is the principal variation in UCI notation, best move first.
	Moves []string
}

// Evaluation is an ordered set of candidate lines, best first.
// The zero value is the neutral evaluation substituted for failed calls:
// zero score, no moves.
type Evaluation struct {
	Lines []Line
}

// BestCP returns the top line's score, or 0 if there are no lines.
func (e Evaluation) BestCP() int {
	if len(e.Lines) == 0 {
		return 0
	}
	return e.Lines[0].CP
}

// BestMove returns the top line's first move in UCI notation, or "" if
// there is none.
func (e Evaluation) BestMove() string {
	if len(e.Lines) == 0 || len(e.Lines[0].Moves) == 0 {
		return ""
	}
	return e.Lines[0].Moves[0]
}

// Session wraps one engine subprocess. A session serves one query at a
// time and is intended to be owned by a single game analysis; it is not
// shared across concurrent analyses.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	output chan string
	logger *zap.Logger

	mu         sync.Mutex
	multiPV    int
	closed     bool
	terminated bool
}

// NewSession starts the engine binary at path and performs the UCI
// handshake. The caller must Close the session.
func NewSession(path string, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting engine: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		output: make(chan string, 256),
		logger: logger,
	}

	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			s.output <- scanner.Text()
		}
		close(s.output)
	}()

	if err := s.handshake(); err != nil {
		s.Close()
		return nil, err
	}

	logger.Debug("engine session started", zap.String("binary", path))
	return s, nil
}

// handshake sends "uci" and waits for "uciok".
func (s *Session) handshake() error {
	if err := s.send("uci"); err != nil {
		return err
	}

	deadline := time.After(handshakeTimeout)
	for {
		select {
		case line, ok := <-s.output:
			if !ok {
				return fmt.Errorf("engine exited during handshake")
			}
			if line == "uciok" {
				return s.send("ucinewgame")
			}
		case <-deadline:
			return fmt.Errorf("timeout waiting for uciok")
		}
	}
}

// Analyze evaluates one position at the given depth, requesting up to
// lines candidate lines. Results are ordered best-first, scores from
// White's perspective regardless of the side to move, mates clamped to
// ±MateScore. Lines the engine reports without a score are dropped.
//
// On failure the neutral Evaluation is returned alongside the error so
// callers can substitute it without inspecting the result.
func (s *Session) Analyze(ctx context.Context, fenStr string, depth, lines int) (Evaluation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Evaluation{}, ErrSessionClosed
	}
	if depth < 1 {
		depth = 1
	}
	if lines < 1 {
		lines = 1
	}

	side, err := fen.SideToMove(fenStr)
	if err != nil {
		return Evaluation{}, fmt.Errorf("engine: %w", err)
	}
	whiteToMove := side == "w"

	if lines != s.multiPV {
		if err := s.send(fmt.Sprintf("setoption name MultiPV value %d", lines)); err != nil {
			return Evaluation{}, err
		}
		s.multiPV = lines
	}

	if err := s.send("position fen " + fenStr); err != nil {
		return Evaluation{}, err
	}
	if err := s.send(fmt.Sprintf("go depth %d", depth)); err != nil {
		return Evaluation{}, err
	}

	// The engine streams info lines of increasing depth; keep the latest
	// per multipv rank until the bestmove sentinel arrives.
	latest := make(map[int]infoLine, lines)
	for {
		select {
		case line, ok := <-s.output:
			if !ok {
				s.closed = true
				return Evaluation{}, ErrSessionClosed
			}
			if strings.HasPrefix(line, "bestmove") {
				return buildEvaluation(latest, lines, whiteToMove), nil
			}
			if info, ok := parseInfo(line); ok {
				latest[info.multiPV] = info
			}
		case <-ctx.Done():
			// An in-flight search may still stream output, so the
			// session is unusable after cancellation. Close reaps the
			// process.
			s.closed = true
			return Evaluation{}, ctx.Err()
		}
	}
}

// buildEvaluation assembles ordered lines from the collected info records.
func buildEvaluation(latest map[int]infoLine, lines int, whiteToMove bool) Evaluation {
	var ev Evaluation
	for rank := 1; rank <= lines; rank++ {
		info, ok := latest[rank]
		if !ok || !info.hasScore {
			continue
		}
		cp := info.cp
		if !whiteToMove {
			// UCI scores are from the mover's perspective.
			cp = -cp
		}
		ev.Lines = append(ev.Lines, Line{CP: cp, Moves: info.pv})
	}
	return ev
}

func (s *Session) send(cmd string) error {
	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return fmt.Errorf("engine write: %w", err)
	}
	return nil
}

// Close terminates the engine process. It is safe to call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return nil
	}
	s.terminated = true
	s.closed = true

	// Drain remaining output so the reader goroutine can exit.
	go func() {
		for range s.output {
		}
	}()

	// Ask nicely first; kill if the process lingers.
	_ = s.send("quit")
	_ = s.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- s.cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		_ = s.cmd.Process.Kill()
		return <-done
	}
}
