// Package progress provides audit.Observer implementations for the terminal
// and for the log.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/kurihiro0119/github-org-repo-access/internal/audit"
)

// Terminal rewrites a single status line on w
type Terminal struct {
	w       io.Writer
	lastLen int
}

// NewTerminal creates a terminal observer writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (t *Terminal) OrganizationStarted(org string, index, total int) {
	t.status(fmt.Sprintf("Analyzing org: %s (%d/%d)", org, index+1, total))
}

func (t *Terminal) RepositoryStarted(org, repo string, index, total int) {
	t.status(fmt.Sprintf("Analyzing %s/%s (%d/%d)", org, repo, index+1, total))
}

func (t *Terminal) OrganizationFinished(org string, repositories int) {
	t.status(fmt.Sprintf("Analyzed org: %s, %d repos", org, repositories))
	fmt.Fprintln(t.w)
	t.lastLen = 0
}

// Done ends a status line left open by an aborted or skipped organization
func (t *Terminal) Done() {
	if t.lastLen == 0 {
		return
	}
	fmt.Fprintln(t.w)
	t.lastLen = 0
}

// status overwrites the previous line, padding with spaces when it was longer
func (t *Terminal) status(line string) {
	padding := 0
	if t.lastLen > len(line) {
		padding = t.lastLen - len(line)
	}
	fmt.Fprintf(t.w, "\r%s%*s", line, padding, "")
	t.lastLen = len(line)
}

// Logging reports progress as debug log entries
type Logging struct {
	logger *zap.Logger
}

// NewLogging creates an observer writing to logger
func NewLogging(logger *zap.Logger) *Logging {
	return &Logging{logger: logger}
}

func (l *Logging) OrganizationStarted(org string, index, total int) {
	l.logger.Debug("Analyzing org", zap.String("org", org), zap.Int("index", index+1), zap.Int("total", total))
}

func (l *Logging) RepositoryStarted(org, repo string, index, total int) {
	l.logger.Debug("Analyzing repo", zap.String("org", org), zap.String("repo", repo), zap.Int("index", index+1), zap.Int("total", total))
}

func (l *Logging) OrganizationFinished(org string, repositories int) {
	l.logger.Debug("Analyzed org", zap.String("org", org), zap.Int("repos", repositories))
}

// Multi fans notifications out to several observers
type Multi []audit.Observer

func (m Multi) OrganizationStarted(org string, index, total int) {
	for _, o := range m {
		o.OrganizationStarted(org, index, total)
	}
}

func (m Multi) RepositoryStarted(org, repo string, index, total int) {
	for _, o := range m {
		o.RepositoryStarted(org, repo, index, total)
	}
}

func (m Multi) OrganizationFinished(org string, repositories int) {
	for _, o := range m {
		o.OrganizationFinished(org, repositories)
	}
}

var (
	_ audit.Observer = (*Terminal)(nil)
	_ audit.Observer = (*Logging)(nil)
	_ audit.Observer = Multi(nil)
)
