package game

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/revrebgame/revreb-server-go/internal/game/state"
)

// Snapshot is one recorded point in a game: the full document plus its
// checksum, so replays can detect divergence between two engine versions.
type Snapshot struct {
	Taken    time.Time        `json:"taken"`
	Checksum string           `json:"checksum"`
	State    *state.GameState `json:"state"`
}

// Recorder collects per-action snapshots. Snapshots accumulate in memory and
// are flushed to one gzipped JSON file per game when the game ends or when
// Flush is called explicitly.
type Recorder struct {
	dir    string
	logger *zap.Logger

	mu    sync.Mutex
	games map[string][]Snapshot
}

// NewRecorder creates a recorder writing replay files under dir.
func NewRecorder(dir string, logger *zap.Logger) *Recorder {
	return &Recorder{
		dir:    dir,
		logger: logger,
		games:  make(map[string][]Snapshot),
	}
}

// Record captures a snapshot of the committed state. Game-over states flush
// the accumulated replay to disk.
func (r *Recorder) Record(st *state.GameState) {
	cp, err := st.Clone()
	if err != nil {
		r.logger.Warn("replay snapshot skipped", zap.String("game", st.GameID), zap.Error(err))
		return
	}
	snap := Snapshot{Taken: time.Now().UTC(), Checksum: cp.Checksum(), State: cp}

	r.mu.Lock()
	r.games[st.GameID] = append(r.games[st.GameID], snap)
	n := len(r.games[st.GameID])
	r.mu.Unlock()

	r.logger.Debug("replay snapshot recorded",
		zap.String("game", st.GameID),
		zap.Int("snapshots", n),
	)

	if st.Phase == state.PhaseGameOver {
		if err := r.Flush(st.GameID); err != nil {
			r.logger.Warn("replay flush failed", zap.String("game", st.GameID), zap.Error(err))
		}
	}
}

// Snapshots returns the in-memory snapshots for a game.
func (r *Recorder) Snapshots(gameID string) []Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Snapshot(nil), r.games[gameID]...)
}

// Flush writes the game's snapshots to <dir>/<gameID>.replay.json.gz and
// drops them from memory.
func (r *Recorder) Flush(gameID string) error {
	r.mu.Lock()
	snaps := r.games[gameID]
	delete(r.games, gameID)
	r.mu.Unlock()

	if len(snaps) == 0 {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	path := filepath.Join(r.dir, gameID+".replay.json.gz")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(snaps); err != nil {
		zw.Close()
		return fmt.Errorf("encode replay: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish replay: %w", err)
	}
	r.logger.Info("replay written",
		zap.String("game", gameID),
		zap.Int("snapshots", len(snaps)),
		zap.String("path", path),
	)
	return nil
}

// LoadReplay reads a flushed replay file back into snapshots.
func LoadReplay(dir, gameID string) ([]Snapshot, error) {
	f, err := os.Open(filepath.Join(dir, gameID+".replay.json.gz"))
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	defer zr.Close()

	var snaps []Snapshot
	if err := json.NewDecoder(zr).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return snaps, nil
}
