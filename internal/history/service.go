// Package history discovers projects and sessions under the Claude
// projects root. It owns no parsing; session files are summarized through
// an injected parser.Engine.
package history

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/AlexNguyenz/history-hub/internal/claude"
	"github.com/AlexNguyenz/history-hub/internal/parser"
	"github.com/AlexNguyenz/history-hub/pkg/models"
)

// probeLimit caps how many recent session files a project scan inspects
// while looking for a recorded working directory.
const probeLimit = 10

// Service answers project and session queries against one projects root.
// Every call recomputes its result from the filesystem; no state is kept
// between invocations.
type Service struct {
	root   string
	engine parser.Engine
	logger *log.Logger
}

// NewService creates a Service reading from root and summarizing through
// engine.
func NewService(root string, engine parser.Engine) *Service {
	return &Service{
		root:   root,
		engine: engine,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

// SetLogger replaces the diagnostic logger used for skipped files.
func (s *Service) SetLogger(logger *log.Logger) {
	s.logger = logger
}

type sessionFile struct {
	path    string
	modTime time.Time
}

// ListProjects enumerates the immediate subdirectories of the projects
// root. A missing root means no projects, not an error. For each project
// the session files are counted, a provisional name is decoded from the
// directory name, and up to probeLimit recent session files are summarized
// to recover a better name from the recorded working directory.
func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	if _, err := os.Stat(s.root); errors.Is(err, os.ErrNotExist) {
		return []models.Project{}, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects directory %s: %w", s.root, err)
	}

	projects := make([]models.Project, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		projectDir := filepath.Join(s.root, entry.Name())
		files, err := os.ReadDir(projectDir)
		if err != nil {
			s.logger.Printf("skipping unreadable project directory %s: %v", projectDir, err)
			continue
		}

		var candidates []sessionFile
		count := 0
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), claude.SessionFileExt) {
				continue
			}
			count++
			info, err := f.Info()
			if err != nil {
				continue
			}
			candidates = append(candidates, sessionFile{
				path:    filepath.Join(projectDir, f.Name()),
				modTime: info.ModTime(),
			})
		}

		project := models.Project{
			Name:         claude.DecodeProjectName(entry.Name()),
			Path:         projectDir,
			SessionCount: count,
		}
		if err := s.enrichProject(ctx, &project, candidates); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// enrichProject probes the most recently modified session files for a
// recorded working directory; the first hit renames the project after the
// working directory's last segment. Files that fail to summarize are
// skipped, except that an uninitialized parser aborts the whole scan.
func (s *Service) enrichProject(ctx context.Context, project *models.Project, candidates []sessionFile) error {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})
	if len(candidates) > probeLimit {
		candidates = candidates[:probeLimit]
	}

	for _, candidate := range candidates {
		summary, err := s.engine.SessionSummary(ctx, candidate.path)
		if err != nil {
			if errors.Is(err, parser.ErrNotInitialized) {
				return err
			}
			s.logger.Printf("failed to summarize %s: %v", candidate.path, err)
			continue
		}
		if project.LastActivity.IsZero() && summary.LastTimestamp != nil {
			project.LastActivity = summary.LastTimestamp.Local()
		}
		if summary.CWD != "" {
			project.Name = filepath.Base(summary.CWD)
			return nil
		}
	}
	return nil
}

// ListSessions summarizes every session file in projectPath and returns
// the results newest first. Entries without a last timestamp keep their
// enumeration position relative to each other and to their neighbors.
func (s *Service) ListSessions(ctx context.Context, projectPath string) ([]models.SessionSummary, error) {
	entries, err := os.ReadDir(projectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read project directory %s: %w", projectPath, err)
	}

	summaries := make([]models.SessionSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), claude.SessionFileExt) {
			continue
		}
		path := filepath.Join(projectPath, entry.Name())
		summary, err := s.engine.SessionSummary(ctx, path)
		if err != nil {
			if errors.Is(err, parser.ErrNotInitialized) {
				return nil, err
			}
			s.logger.Printf("failed to summarize %s: %v", path, err)
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastTimestamp, summaries[j].LastTimestamp
		if a == nil || b == nil {
			return false
		}
		return a.After(*b)
	})

	return summaries, nil
}

// ParseSession returns the full transcript of one session file.
func (s *Service) ParseSession(ctx context.Context, filePath string) ([]models.Message, error) {
	messages, err := s.engine.ParseSession(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", filePath, err)
	}
	return messages, nil
}

// SessionSummary returns the summary of one session file.
func (s *Service) SessionSummary(ctx context.Context, filePath string) (models.SessionSummary, error) {
	summary, err := s.engine.SessionSummary(ctx, filePath)
	if err != nil {
		return models.SessionSummary{}, fmt.Errorf("failed to summarize session %s: %w", filePath, err)
	}
	return summary, nil
}
