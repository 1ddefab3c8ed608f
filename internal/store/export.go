package store

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/neurosim-go/neurosim/internal/models"
)

// ExportSamplesJSONL writes every persisted sample to path, one JSON object
// per line (the full payload as stored).
func (s *SessionStore) ExportSamplesJSONL(ctx context.Context, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM samples ORDER BY created_at ASC`)
	if err != nil {
		return fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scanning payload: %w", err)
		}
		if _, err := w.WriteString(payload + "\n"); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return w.Flush()
}

// eachSample streams decoded sample payloads in insertion order.
func (s *SessionStore) eachSample(ctx context.Context, fn func(models.BrainActivitySample) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM samples ORDER BY created_at ASC`)
	if err != nil {
		return fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scanning payload: %w", err)
		}
		var sample models.BrainActivitySample
		if err := json.Unmarshal([]byte(payload), &sample); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		if err := fn(sample); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ExportSpikesCSV writes one row per spike timestamp across all samples.
// Neurons with no spikes still get one row with an empty spike_time, so
// every neuron appears in the output.
func (s *SessionStore) ExportSpikesCSV(ctx context.Context, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"sample_id", "neuron_id", "spike_time", "spike_count", "duration", "firing_rate", "model"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	err = s.eachSample(ctx, func(sample models.BrainActivitySample) error {
		for _, train := range sample.SpikeTrains {
			base := []string{
				sample.ID,
				strconv.Itoa(train.NeuronID),
				"",
				strconv.Itoa(train.SpikeCount()),
				formatFloat(train.DurationS),
				formatFloat(train.RealizedRate()),
				train.Model.String(),
			}
			if len(train.Timestamps) == 0 {
				if err := w.Write(base); err != nil {
					return err
				}
				continue
			}
			for _, ts := range train.Timestamps {
				row := append([]string(nil), base...)
				row[2] = formatFloat(ts)
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// ExportEEGCSV writes one row per EEG sample per channel across all samples.
func (s *SessionStore) ExportEEGCSV(ctx context.Context, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"sample_id", "channel_name", "time", "amplitude", "sampling_rate", "state"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	err = s.eachSample(ctx, func(sample models.BrainActivitySample) error {
		for _, channel := range sample.EEGChannels {
			for i, v := range channel.Samples {
				t := float64(i) / channel.SamplingRateHz
				row := []string{
					sample.ID,
					channel.ChannelName,
					formatFloat(t),
					formatFloat(v),
					formatFloat(channel.SamplingRateHz),
					channel.State.String(),
				}
				if err := w.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// ExportRollsCSV writes one row per recorded intuition check.
func (s *SessionStore) ExportRollsCSV(ctx context.Context, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT character_name, context, d20_roll, wisdom_modifier, total_score, difficulty, success, state, total_spikes, mean_firing_rate
		FROM rolls ORDER BY id ASC`)
	if err != nil {
		return fmt.Errorf("querying rolls: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"character_name", "context", "d20_roll", "wisdom_modifier", "total_score", "difficulty", "success", "state", "total_spikes", "mean_firing_rate"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for rows.Next() {
		var name, contextStr, state string
		var roll, modifier, total, difficulty, success, spikes int
		var rate float64
		if err := rows.Scan(&name, &contextStr, &roll, &modifier, &total, &difficulty, &success, &state, &spikes, &rate); err != nil {
			return fmt.Errorf("scanning roll row: %w", err)
		}
		row := []string{
			name,
			contextStr,
			strconv.Itoa(roll),
			strconv.Itoa(modifier),
			strconv.Itoa(total),
			strconv.Itoa(difficulty),
			strconv.FormatBool(success == 1),
			state,
			strconv.Itoa(spikes),
			formatFloat(rate),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
