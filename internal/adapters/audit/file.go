package audit

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/longregen/dailybrief/internal/logger"
	"github.com/longregen/dailybrief/internal/ports"
)

// FileSink writes each record to its own text file and optionally opens it
// with a viewer command such as xdg-open.
type FileSink struct {
	dir         string
	openCommand string
	now         func() time.Time
	start       func(name string, args ...string) error
	log         *logger.Logger
}

func NewFileSink(dir, openCommand string, log *logger.Logger) *FileSink {
	if dir == "" {
		dir = os.TempDir()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FileSink{
		dir:         dir,
		openCommand: openCommand,
		now:         time.Now,
		start:       startDetached,
		log:         log,
	}
}

func (s *FileSink) Name() string { return "file" }

// FileName builds "<category>[-<candidate>][-gen<N>]-<unix millis>.txt".
func FileName(r ports.AuditRecord, at time.Time) string {
	var sb strings.Builder
	sb.WriteString(sanitize(r.Category))
	if r.CandidateID != "" {
		sb.WriteString("-" + sanitize(r.CandidateID))
	}
	if r.Generation != nil {
		fmt.Fprintf(&sb, "-gen%d", *r.Generation)
	}
	fmt.Fprintf(&sb, "-%d.txt", at.UnixMilli())
	return sb.String()
}

func (s *FileSink) Record(ctx context.Context, r ports.AuditRecord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create audit dir: %w", err)
	}

	at := r.CreatedAt
	if at.IsZero() {
		at = s.now()
	}
	path := filepath.Join(s.dir, FileName(r, at))
	if err := os.WriteFile(path, []byte(Render(r, at)), 0o600); err != nil {
		return "", fmt.Errorf("write audit file: %w", err)
	}

	if s.openCommand != "" {
		if err := s.start(s.openCommand, path); err != nil {
			s.log.Warn("failed to open audit file", "path", path, "error", err)
		}
	}

	return path, nil
}

// Render formats a record as a human-readable log block.
func Render(r ports.AuditRecord, at time.Time) string {
	title := strings.ToUpper(r.Category) + " LOG"
	var sb strings.Builder
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n")
	fmt.Fprintf(&sb, "Timestamp: %s\n", at.UTC().Format(time.RFC3339Nano))
	if r.RunID != "" {
		fmt.Fprintf(&sb, "Run ID: %s\n", r.RunID)
	}
	if r.CandidateID != "" {
		fmt.Fprintf(&sb, "Candidate ID: %s\n", r.CandidateID)
	}
	if r.Generation != nil {
		fmt.Fprintf(&sb, "Generation: %d\n", *r.Generation)
	}
	sb.WriteString("\n")
	sb.WriteString(r.Payload)
	if !strings.HasSuffix(r.Payload, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator || r == ' ' {
			return '_'
		}
		return r
	}, s)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
