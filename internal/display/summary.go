package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Service renders operator summaries. All output goes to the configured
// writer so tests can capture it.
type Service struct {
	out    io.Writer
	colors ColorSystem
	icons  IconSystem
}

// NewService creates a display service writing to stdout.
func NewService(noColor bool) *Service {
	return &Service{
		out:    os.Stdout,
		colors: NewColorSystem(DefaultTheme(), noColor),
		icons:  NewIconSystem(),
	}
}

// NewServiceWithWriter creates a display service with a custom writer.
func NewServiceWithWriter(out io.Writer, noColor bool) *Service {
	return &Service{
		out:    out,
		colors: NewColorSystem(DefaultTheme(), noColor),
		icons:  NewIconSystem(),
	}
}

// BackupSummary carries the facts printed after a successful backup.
type BackupSummary struct {
	ArchivePath   string
	ArchiveSize   int64
	Entries       int
	Duration      time.Duration
	Dialect       string
	Containerized bool
	ContainerName string
	DatabaseName  string
	Verified      bool
	VerifyWarning string
}

// RestoreSummary carries the facts printed after a successful restore.
type RestoreSummary struct {
	ArchivePath   string
	SiteRoot      string
	SafetyNetPath string
	Duration      time.Duration
	Dialect       string
	Containerized bool
	ContainerName string
	DatabaseName  string
}

// Step prints a progress line for a phase of an operation.
func (s *Service) Step(icon, format string, args ...interface{}) {
	fmt.Fprintf(s.out, "%s %s\n", s.icons.RenderIconWithColor(icon, s.colors), fmt.Sprintf(format, args...))
}

// Success prints a success line.
func (s *Service) Success(format string, args ...interface{}) {
	s.Step("success", "%s", s.colors.Sprintf(s.colors.Theme().Success, format, args...))
}

// Warning prints a warning line.
func (s *Service) Warning(format string, args ...interface{}) {
	s.Step("warning", "%s", s.colors.Sprintf(s.colors.Theme().Warning, format, args...))
}

// Error prints an error line.
func (s *Service) Error(format string, args ...interface{}) {
	s.Step("error", "%s", s.colors.Sprintf(s.colors.Theme().Error, format, args...))
}

// ShowBackupSummary prints the end-of-backup report.
func (s *Service) ShowBackupSummary(sum *BackupSummary) {
	theme := s.colors.Theme()
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.colors.Sprintf(theme.Primary, "Backup complete"))
	fmt.Fprintf(s.out, "  Archive:    %s\n", sum.ArchivePath)
	fmt.Fprintf(s.out, "  Size:       %s (%d entries)\n", FormatBytes(sum.ArchiveSize), sum.Entries)
	fmt.Fprintf(s.out, "  Database:   %s (%s)\n", sum.DatabaseName, sum.Dialect)
	fmt.Fprintf(s.out, "  Mode:       %s\n", s.describeMode(sum.Containerized, sum.ContainerName))
	fmt.Fprintf(s.out, "  Duration:   %s\n", sum.Duration.Round(time.Millisecond))
	switch {
	case sum.VerifyWarning != "":
		s.Warning("archive verification failed: %s", sum.VerifyWarning)
	case sum.Verified:
		fmt.Fprintf(s.out, "  Integrity:  %s\n", s.colors.Sprintf(theme.Success, "verified"))
	}
}

// ShowRestoreSummary prints the end-of-restore report.
func (s *Service) ShowRestoreSummary(sum *RestoreSummary) {
	theme := s.colors.Theme()
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.colors.Sprintf(theme.Primary, "Restore complete"))
	fmt.Fprintf(s.out, "  Archive:    %s\n", sum.ArchivePath)
	fmt.Fprintf(s.out, "  Site root:  %s\n", sum.SiteRoot)
	fmt.Fprintf(s.out, "  Database:   %s (%s)\n", sum.DatabaseName, sum.Dialect)
	fmt.Fprintf(s.out, "  Mode:       %s\n", s.describeMode(sum.Containerized, sum.ContainerName))
	fmt.Fprintf(s.out, "  Duration:   %s\n", sum.Duration.Round(time.Millisecond))
	if sum.SafetyNetPath != "" {
		fmt.Fprintf(s.out, "  Previous files kept at: %s\n", sum.SafetyNetPath)
	}
}

// ShowManifest prints raw manifest text indented under a heading.
func (s *Service) ShowManifest(text string) {
	if text == "" {
		s.Step("info", "archive carries no manifest")
		return
	}
	fmt.Fprintln(s.out, s.colors.Sprintf(s.colors.Theme().Primary, "Archive manifest"))
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintf(s.out, "  %s\n", line)
	}
}

func (s *Service) describeMode(containerized bool, containerName string) string {
	if containerized {
		return fmt.Sprintf("containerized (%s %s)", s.icons.RenderIcon("container"), containerName)
	}
	return "native"
}

// FormatBytes renders a byte count in human units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
