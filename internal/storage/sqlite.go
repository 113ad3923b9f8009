// Package storage records monitor samples in SQLite so a run can be
// inspected after it ends. Uses the pure-Go modernc.org/sqlite driver to
// avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/snek/internal/diag"
)

// ErrNoRun is returned when a run ID is unknown.
var ErrNoRun = errors.New("storage: no such run")

// Store manages the SQLite database connection for trace persistence.
type Store struct {
	db *sql.DB
}

// RunInfo describes one recorded run.
type RunInfo struct {
	ID        int64
	Label     string
	Samples   int
	CreatedAt time.Time
}

// Sample is one stored monitor sample with its per-task rows.
type Sample struct {
	ID             int64
	RunID          int64
	Seq            uint64
	SampledAt      time.Time
	FPS            uint32
	CPUUtilization uint8
	NumTasks       int
	Timing         diag.TimingReport
	ToneDrops      uint64
	Tasks          []TaskSample
}

// TaskSample is one task's row within a sample.
type TaskSample struct {
	Name           string
	Runtime        uint64
	Percent        uint8
	StackAllocated uint32
	StackUsed      uint32
}

// Summary aggregates every sample of a run.
type Summary struct {
	RunID      int64
	Label      string
	Samples    int
	AvgFPS     float64
	MinFPS     uint32
	AvgCPU     float64
	MaxCPU     uint8
	MaxJitter  int32 // largest absolute jitter, us
	MaxExecUs  uint32
	ToneDrops  uint64
	PeakStacks map[string]uint32
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// one writer; keeps sqlite from returning SQLITE_BUSY between goroutines
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			sampled_at INTEGER NOT NULL,
			fps INTEGER NOT NULL,
			cpu INTEGER NOT NULL,
			num_tasks INTEGER NOT NULL,
			avg_period_us INTEGER NOT NULL,
			jitter_us INTEGER NOT NULL,
			avg_exec_us INTEGER NOT NULL,
			max_exec_us INTEGER NOT NULL,
			tone_drops INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, seq);

		CREATE TABLE IF NOT EXISTS task_samples (
			sample_id INTEGER NOT NULL REFERENCES samples(id),
			name TEXT NOT NULL,
			runtime INTEGER NOT NULL DEFAULT 0,
			percent INTEGER NOT NULL DEFAULT 0,
			stack_alloc INTEGER NOT NULL DEFAULT 0,
			stack_used INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_task_samples_sample ON task_samples(sample_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StartRun opens a new run; samples recorded through the returned Run are
// grouped under it.
func (s *Store) StartRun(label string) (*Run, error) {
	result, err := s.db.Exec("INSERT INTO runs (label) VALUES (?)", label)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot start run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return &Run{store: s, id: id}, nil
}

// Run appends samples to one run. It satisfies system.DiagnosticsSink.
type Run struct {
	store *Store
	id    int64

	mu      sync.Mutex
	samples int
}

// ID returns the run's database ID.
func (r *Run) ID() int64 { return r.id }

// Recorded counts samples written through r.
func (r *Run) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}

// RecordDiagnostics writes d and its task rows in one transaction.
func (r *Run) RecordDiagnostics(d diag.Diagnostics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.store.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO samples
		 (run_id, seq, sampled_at, fps, cpu, num_tasks, avg_period_us, jitter_us, avg_exec_us, max_exec_us, tone_drops)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.id,
		int64(d.Seq),
		d.SampledAt.UnixNano(),
		d.FPS,
		d.CPUUtilization,
		d.NumTasks,
		d.Timing.AvgPeriodUs,
		d.Timing.LastJitterUs,
		d.Timing.AvgExecUs,
		d.Timing.MaxExecUs,
		int64(d.ToneDrops),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save sample: %w", err)
	}
	sampleID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	for _, t := range mergeTasks(d) {
		if _, err := tx.Exec(
			`INSERT INTO task_samples (sample_id, name, runtime, percent, stack_alloc, stack_used)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sampleID, t.Name, int64(t.Runtime), t.Percent, t.StackAllocated, t.StackUsed,
		); err != nil {
			return fmt.Errorf("storage: cannot save task sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit sample: %w", err)
	}
	r.samples++
	return nil
}

// mergeTasks joins CPU and stack rows by task name, CPU order first.
func mergeTasks(d diag.Diagnostics) []TaskSample {
	out := make([]TaskSample, 0, len(d.Tasks))
	index := make(map[string]int, len(d.Tasks))
	for _, t := range d.Tasks {
		index[t.Name] = len(out)
		out = append(out, TaskSample{Name: t.Name, Runtime: t.Runtime, Percent: t.Percent})
	}
	for _, st := range d.Stacks {
		i, ok := index[st.Name]
		if !ok {
			i = len(out)
			index[st.Name] = i
			out = append(out, TaskSample{Name: st.Name})
		}
		out[i].StackAllocated = st.Allocated
		out[i].StackUsed = st.Used
	}
	return out
}

// Runs lists the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.label, r.created_at, COUNT(s.id)
		 FROM runs r LEFT JOIN samples s ON s.run_id = r.id
		 GROUP BY r.id
		 ORDER BY r.id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var r RunInfo
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Label, &createdAt, &r.Samples); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return runs, nil
}

// LatestRun returns the ID of the newest run.
func (s *Store) LatestRun() (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(id) FROM runs").Scan(&id); err != nil {
		return 0, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	if !id.Valid {
		return 0, ErrNoRun
	}
	return id.Int64, nil
}

// RecentSamples returns up to limit samples of a run, newest first, with
// their task rows.
func (s *Store) RecentSamples(runID int64, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, seq, sampled_at, fps, cpu, num_tasks,
		        avg_period_us, jitter_us, avg_exec_us, max_exec_us, tone_drops
		 FROM samples
		 WHERE run_id = ?
		 ORDER BY seq DESC
		 LIMIT ?`,
		runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sm Sample
		var seq, sampledAt, drops int64
		if err := rows.Scan(
			&sm.ID,
			&sm.RunID,
			&seq,
			&sampledAt,
			&sm.FPS,
			&sm.CPUUtilization,
			&sm.NumTasks,
			&sm.Timing.AvgPeriodUs,
			&sm.Timing.LastJitterUs,
			&sm.Timing.AvgExecUs,
			&sm.Timing.MaxExecUs,
			&drops,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		sm.Seq = uint64(seq)
		sm.SampledAt = time.Unix(0, sampledAt)
		sm.ToneDrops = uint64(drops)
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	rows.Close()

	for i := range samples {
		tasks, err := s.taskSamples(samples[i].ID)
		if err != nil {
			return nil, err
		}
		samples[i].Tasks = tasks
	}

	return samples, nil
}

func (s *Store) taskSamples(sampleID int64) ([]TaskSample, error) {
	rows, err := s.db.Query(
		`SELECT name, runtime, percent, stack_alloc, stack_used
		 FROM task_samples WHERE sample_id = ?`,
		sampleID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query task samples: %w", err)
	}
	defer rows.Close()

	var tasks []TaskSample
	for rows.Next() {
		var t TaskSample
		var runtime int64
		if err := rows.Scan(&t.Name, &runtime, &t.Percent, &t.StackAllocated, &t.StackUsed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan task row: %w", err)
		}
		t.Runtime = uint64(runtime)
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Summary aggregates a run's samples.
func (s *Store) Summary(runID int64) (*Summary, error) {
	sum := &Summary{RunID: runID, PeakStacks: make(map[string]uint32)}

	err := s.db.QueryRow("SELECT label FROM runs WHERE id = ?", runID).Scan(&sum.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}

	var drops int64
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(fps), 0), COALESCE(MIN(fps), 0),
		        COALESCE(AVG(cpu), 0), COALESCE(MAX(cpu), 0),
		        COALESCE(MAX(ABS(jitter_us)), 0), COALESCE(MAX(max_exec_us), 0),
		        COALESCE(MAX(tone_drops), 0)
		 FROM samples WHERE run_id = ?`,
		runID,
	).Scan(&sum.Samples, &sum.AvgFPS, &sum.MinFPS, &sum.AvgCPU, &sum.MaxCPU, &sum.MaxJitter, &sum.MaxExecUs, &drops)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run summary: %w", err)
	}
	sum.ToneDrops = uint64(drops)

	rows, err := s.db.Query(
		`SELECT t.name, MAX(t.stack_used)
		 FROM task_samples t JOIN samples s ON s.id = t.sample_id
		 WHERE s.run_id = ?
		 GROUP BY t.name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query stack peaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var peak uint32
		if err := rows.Scan(&name, &peak); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		sum.PeakStacks[name] = peak
	}

	return sum, rows.Err()
}

// parseTime reads a DATETIME column as either time.Time or text.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
