package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/models"
)

// SessionStore persists activity samples and roll results in SQLite.
type SessionStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSessionStore opens (creating if needed) the session database at
// dataDir/neurosim.db.
func NewSessionStore(dataDir string) (*SessionStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "neurosim.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SessionStore{db: db, dbPath: dbPath}, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// SaveSample persists one activity sample. Summary columns are denormalized
// for querying; the full record is stored as a JSON payload.
func (s *SessionStore) SaveSample(ctx context.Context, sample models.BrainActivitySample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.ID == "" {
		return fmt.Errorf("sample ID is required")
	}

	payload, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO samples (id, created_at, duration_s, state, n_neurons, n_channels, total_spikes, mean_firing_rate, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.ID,
		sample.Timestamp.UTC().Format(time.RFC3339Nano),
		sample.DurationS,
		sample.State.String(),
		len(sample.SpikeTrains),
		len(sample.EEGChannels),
		sample.TotalSpikes(),
		sample.Metrics.MeanFiringRate,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting sample %s: %w", sample.ID, err)
	}
	return nil
}

// GetSample loads one sample by ID, including its full payload.
func (s *SessionStore) GetSample(ctx context.Context, id string) (models.BrainActivitySample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM samples WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.BrainActivitySample{}, fmt.Errorf("sample %s not found", id)
	}
	if err != nil {
		return models.BrainActivitySample{}, fmt.Errorf("querying sample %s: %w", id, err)
	}

	var sample models.BrainActivitySample
	if err := json.Unmarshal([]byte(payload), &sample); err != nil {
		return models.BrainActivitySample{}, fmt.Errorf("unmarshal sample %s: %w", id, err)
	}
	return sample, nil
}

// SampleRow is a summary row for listing without decoding payloads.
type SampleRow struct {
	ID             string
	CreatedAt      time.Time
	DurationS      float64
	State          models.MentalState
	NeuronCount    int
	ChannelCount   int
	TotalSpikes    int
	MeanFiringRate float64
}

// ListSamples returns summary rows, newest first. limit <= 0 means no limit.
func (s *SessionStore) ListSamples(ctx context.Context, limit int) ([]SampleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, created_at, duration_s, state, n_neurons, n_channels, total_spikes, mean_firing_rate
		FROM samples ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var out []SampleRow
	for rows.Next() {
		var r SampleRow
		var createdAt, state string
		if err := rows.Scan(&r.ID, &createdAt, &r.DurationS, &state, &r.NeuronCount, &r.ChannelCount, &r.TotalSpikes, &r.MeanFiringRate); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.State = models.MentalState(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRoll persists one intuition check result.
func (s *SessionStore) SaveRoll(ctx context.Context, result game.CheckResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	success := 0
	if result.Success {
		success = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rolls (created_at, character_name, context, d20_roll, wisdom_modifier, total_score, difficulty, wisdom, success, state, total_spikes, mean_firing_rate, sample_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		result.CharacterName,
		result.Context,
		result.D20Roll,
		result.WisdomModifier,
		result.TotalScore,
		result.Difficulty,
		result.Wisdom,
		success,
		result.State.String(),
		result.TotalSpikes,
		result.MeanFiringRate,
		result.SampleID,
	)
	if err != nil {
		return fmt.Errorf("inserting roll for %s: %w", result.CharacterName, err)
	}
	return nil
}

// ListRolls returns recorded roll results, oldest first. limit <= 0 means
// no limit.
func (s *SessionStore) ListRolls(ctx context.Context, limit int) ([]game.CheckResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT character_name, context, d20_roll, wisdom_modifier, total_score, difficulty, wisdom, success, state, total_spikes, mean_firing_rate, sample_id
		FROM rolls ORDER BY id ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rolls: %w", err)
	}
	defer rows.Close()

	var out []game.CheckResult
	for rows.Next() {
		var r game.CheckResult
		var success int
		var state string
		if err := rows.Scan(&r.CharacterName, &r.Context, &r.D20Roll, &r.WisdomModifier, &r.TotalScore, &r.Difficulty, &r.Wisdom, &success, &state, &r.TotalSpikes, &r.MeanFiringRate, &r.SampleID); err != nil {
			return nil, fmt.Errorf("scanning roll row: %w", err)
		}
		r.Success = success == 1
		r.State = models.MentalState(state)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats summarizes the persisted session.
type Stats struct {
	TotalSamples      int                        `json:"total_samples"`
	TotalRolls        int                        `json:"total_rolls"`
	TotalSpikes       int                        `json:"total_spikes"`
	TotalDurationS    float64                    `json:"total_duration_s"`
	AverageFiringRate float64                    `json:"average_firing_rate"`
	StateDistribution map[models.MentalState]int `json:"state_distribution"`
}

// SessionStats computes summary statistics over all persisted samples and rolls.
func (s *SessionStore) SessionStats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{StateDistribution: make(map[models.MentalState]int)}

	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_spikes), 0), COALESCE(SUM(duration_s), 0), COALESCE(AVG(mean_firing_rate), 0)
		FROM samples`)
	if err := row.Scan(&stats.TotalSamples, &stats.TotalSpikes, &stats.TotalDurationS, &stats.AverageFiringRate); err != nil {
		return Stats{}, fmt.Errorf("aggregating samples: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rolls`).Scan(&stats.TotalRolls); err != nil {
		return Stats{}, fmt.Errorf("counting rolls: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(*) FROM samples GROUP BY state`)
	if err != nil {
		return Stats{}, fmt.Errorf("querying state distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return Stats{}, fmt.Errorf("scanning state row: %w", err)
		}
		stats.StateDistribution[models.MentalState(state)] = count
	}
	return stats, rows.Err()
}
