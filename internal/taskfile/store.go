package taskfile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tasklinehq/taskline/internal/types"
)

// Store accesses the task and plan file directories.
type Store struct {
	TasksDir string
	PlansDir string
}

// NewStore creates a store over the given directories. PlansDir may be
// empty when the workspace has no plans.
func NewStore(tasksDir, plansDir string) *Store {
	return &Store{TasksDir: tasksDir, PlansDir: plansDir}
}

// LoadAll loads every task record under TasksDir, sorted by path. Files
// that are not markdown, lack frontmatter, or fail validation are
// silently excluded; the directory may hold unrelated content.
func (s *Store) LoadAll() ([]*types.TaskRecord, error) {
	var records []*types.TaskRecord
	err := filepath.WalkDir(s.TasksDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		record, err := DecodeTask(path, data)
		if err != nil {
			return nil // not a task file
		}
		records = append(records, record)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", s.TasksDir, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// LoadPlans loads every plan record under PlansDir, sorted by path, with
// the same silent-exclusion rule as LoadAll.
func (s *Store) LoadPlans() ([]*types.PlanRecord, error) {
	if s.PlansDir == "" {
		return nil, nil
	}
	var plans []*types.PlanRecord
	err := filepath.WalkDir(s.PlansDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		plan, err := DecodePlan(path, data)
		if err != nil {
			return nil
		}
		plans = append(plans, plan)
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", s.PlansDir, err)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Path < plans[j].Path })
	return plans, nil
}

// Mtime returns the file's modification timestamp, the proxy for "file
// changed since last sync".
func (s *Store) Mtime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Restamp sets the file's mtime to ts. Called after a sync write so the
// write itself doesn't advance the mtime past the recorded lastSyncedAt.
func (s *Store) Restamp(path string, ts time.Time) error {
	if ts.IsZero() {
		return nil
	}
	if err := os.Chtimes(path, ts, ts); err != nil {
		return fmt.Errorf("restamping %s: %w", path, err)
	}
	return nil
}

// WriteTask serializes the record back to its path.
func (s *Store) WriteTask(record *types.TaskRecord) error {
	data, err := EncodeTask(record)
	if err != nil {
		return err
	}
	if err := os.WriteFile(record.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", record.Path, err)
	}
	return nil
}

// WritePlan serializes the plan back to its path through the plan field
// names.
func (s *Store) WritePlan(plan *types.PlanRecord) error {
	data, err := EncodePlan(plan)
	if err != nil {
		return err
	}
	if err := os.WriteFile(plan.Path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", plan.Path, err)
	}
	return nil
}

// Rename moves the record's file to reflect a new status or priority,
// preserving the sequence id and slug tokens. Filenames that don't follow
// the four-token contract are left alone: returning false with no error
// is the safety fallback for legacy or hand-edited names.
func (s *Store) Rename(record *types.TaskRecord, newStatus types.Status, newPriority types.Priority) (bool, error) {
	seq, _, _, slug, ok := splitFilename(record.Path)
	if !ok {
		return false, nil
	}
	newName := ComputeFilename(seq, newStatus, newPriority, slug)
	newPath := filepath.Join(filepath.Dir(record.Path), newName)
	if newPath == record.Path {
		return false, nil
	}
	if err := os.Rename(record.Path, newPath); err != nil {
		return false, fmt.Errorf("renaming %s: %w", record.Path, err)
	}
	record.Path = newPath
	return true, nil
}

// NextSequenceID scans the records for the current maximum sequence id
// and returns the next one, zero-padded.
func NextSequenceID(records []*types.TaskRecord) string {
	max := 0
	for _, record := range records {
		if n, err := strconv.Atoi(record.IssueID); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%03d", max+1)
}

// CreateTask writes a brand-new task file named per the filename
// contract, deriving the slug from the record's title. The record's Path
// is set to the created file.
func (s *Store) CreateTask(record *types.TaskRecord) error {
	if err := os.MkdirAll(s.TasksDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", s.TasksDir, err)
	}
	name := ComputeFilename(record.IssueID, record.Status, record.Priority, Slugify(record.Title))
	record.Path = filepath.Join(s.TasksDir, name)
	return s.WriteTask(record)
}
