package trainer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/lowaak/smart-trainer/rep-coach/internal/session"
)

// ReportJournal appends finished session reports to a JSON-lines file
type ReportJournal struct {
	filePath string
	mu       sync.Mutex
	logger   *log.Logger
}

func NewReportJournal(filePath string, logger *log.Logger) *ReportJournal {
	if filePath == "" {
		panic("ReportJournal: filePath cannot be empty")
	}
	if logger == nil {
		panic("ReportJournal: logger cannot be nil")
	}
	return &ReportJournal{
		filePath: filePath,
		logger:   logger,
	}
}

// Path returns the journal file path
func (j *ReportJournal) Path() string { return j.filePath }

// Append writes one report as a single JSON line
func (j *ReportJournal) Append(r session.Report) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report %d: %w", r.SessionNumber, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.filePath), 0755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(j.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", j.filePath, err)
	}
	defer f.Close()

	if _, err := f.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("write journal %s: %w", j.filePath, err)
	}
	j.logger.Printf("ReportJournal: appended session %d to %s", r.SessionNumber, j.filePath)
	return nil
}

// Load reads every report in the journal. A missing file is an empty journal.
func (j *ReportJournal) Load() ([]session.Report, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.filePath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", j.filePath, err)
	}
	defer f.Close()

	var reports []session.Report
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var r session.Report
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			return reports, fmt.Errorf("journal %s line %d: %w", j.filePath, line, err)
		}
		reports = append(reports, r)
	}
	if err := scanner.Err(); err != nil {
		return reports, fmt.Errorf("read journal %s: %w", j.filePath, err)
	}
	return reports, nil
}

// Hook is a session report hook. Failures are logged, the session goes on.
func (j *ReportJournal) Hook(r session.Report) {
	if err := j.Append(r); err != nil {
		j.logger.Printf("ReportJournal: %v", err)
	}
}
