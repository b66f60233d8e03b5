package autopilot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/talgya/solgrid/internal/engine"
	"github.com/talgya/solgrid/internal/world"
)

const maxRecords = 20

// CycleRecord captures what happened in a single autopilot cycle.
type CycleRecord struct {
	Turn      int           `json:"turn"`
	Action    engine.Action `json:"action"`
	Cell      world.CellID  `json:"cell_id,omitempty"`
	Phase     string        `json:"phase"`
	Balance   int64         `json:"balance"`
	Rejection string        `json:"rejection,omitempty"`
	Rationale string        `json:"rationale,omitempty"`
}

// Memory keeps a ring of recent cycle records, optionally mirrored to a file.
type Memory struct {
	Records []CycleRecord `json:"records"`

	path string
}

// LoadMemory reads the memory file. Returns empty memory if path is empty,
// missing or unreadable.
func LoadMemory(path string) *Memory {
	mem := &Memory{path: path}
	if path == "" {
		return mem
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return mem
	}
	if err := json.Unmarshal(data, mem); err != nil {
		slog.Warn("autopilot memory corrupted, starting fresh", "error", err)
		return &Memory{path: path}
	}
	return mem
}

// Save writes the memory to its file, if it has one.
func (m *Memory) Save() error {
	if m.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal autopilot memory: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("write autopilot memory: %w", err)
	}
	return nil
}

// Record adds a cycle record, trimming to maxRecords.
func (m *Memory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// Rejected reports whether the same action on the same cell was refused
// since the last accepted action.
func (m *Memory) Rejected(a engine.Action, cell world.CellID) bool {
	if m == nil {
		return false
	}
	for i := len(m.Records) - 1; i >= 0; i-- {
		r := m.Records[i]
		if r.Action != "" && r.Rejection == "" {
			return false
		}
		if r.Action == a && r.Cell == cell && r.Rejection != "" {
			return true
		}
	}
	return false
}
