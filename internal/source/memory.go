package source

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"

	"smskit/internal/constants"
	"smskit/internal/sms"
)

// MemorySource serves a fixed row set, newest first.
type MemorySource struct {
	mu   sync.RWMutex
	rows []sms.Row
}

func NewMemorySource(rows ...sms.Row) *MemorySource {
	m := &MemorySource{}
	m.Add(rows...)
	return m
}

type fixtureRow struct {
	Address *string `json:"address"`
	Body    *string `json:"body"`
	Date    *int64  `json:"date"`
	Type    *int32  `json:"type"`
}

// LoadFixture reads a JSON array of inbox rows. Keys that are missing or null
// become nil row fields.
func LoadFixture(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}

	var fixture []fixtureRow
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}

	rows := make([]sms.Row, 0, len(fixture))
	for _, f := range fixture {
		rows = append(rows, sms.Row{
			Address: f.Address,
			Body:    f.Body,
			Date:    f.Date,
			Type:    f.Type,
		})
	}

	return NewMemorySource(rows...), nil
}

// Add inserts rows and keeps the set ordered by date descending. Rows without
// a date sort last.
func (m *MemorySource) Add(rows ...sms.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, rows...)
	sort.SliceStable(m.rows, func(i, j int) bool {
		return rowDate(m.rows[i]) > rowDate(m.rows[j])
	})
}

func (m *MemorySource) Name() string {
	return constants.SourceTypeMemory
}

func (m *MemorySource) QueryMessages(ctx context.Context, rowCap int) ([]sms.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rowCap <= 0 {
		return []sms.Row{}, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.rows)
	if n > rowCap {
		n = rowCap
	}
	result := make([]sms.Row, n)
	copy(result, m.rows[:n])
	return result, nil
}

func rowDate(r sms.Row) int64 {
	if r.Date == nil {
		return math.MinInt64
	}
	return *r.Date
}
