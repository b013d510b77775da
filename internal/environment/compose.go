package environment

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "wp-backup/internal/errors"
)

// nameWindow is the number of lines scanned before and after a dialect
// keyword when falling back to textual container-name resolution.
const nameWindow = 5

// composeFile models the subset of a compose descriptor the resolver needs.
type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image         string `yaml:"image"`
	ContainerName string `yaml:"container_name"`
}

// ResolveContainer completes a containerized descriptor: it picks the
// dialect (MariaDB before MySQL, first match wins) and the container name
// from the compose descriptor. A degraded descriptor without a compose
// directory cannot be resolved.
func ResolveContainer(desc *Descriptor) error {
	if !desc.Containerized {
		return fmt.Errorf("ResolveContainer called for a native environment")
	}
	if desc.ComposeDir == "" {
		return apperrors.NewContainerResolution(
			"containerized database detected but no compose directory was resolved; pass the compose directory explicitly", nil)
	}

	path := composeFileIn(desc.ComposeDir)
	if path == "" {
		return apperrors.NewContainerResolution(
			fmt.Sprintf("no compose descriptor found in %s", desc.ComposeDir), nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.NewContainerResolution(
			fmt.Sprintf("cannot read compose descriptor %s", path), err)
	}

	dialect, name, ok := resolveFromYAML(data)
	if !ok {
		dialect, name, ok = resolveFromText(string(data))
	}
	if !ok {
		return apperrors.NewContainerResolution(
			fmt.Sprintf("compose descriptor %s names no database service", path), nil).
			WithContext("compose_dir", desc.ComposeDir)
	}

	desc.Dialect = dialect
	desc.ContainerName = name
	return nil
}

// resolveFromYAML parses the descriptor as YAML and searches services for a
// dialect keyword in the image or the service key, MariaDB first.
func resolveFromYAML(data []byte) (Dialect, string, bool) {
	var cf composeFile
	if err := yaml.Unmarshal(data, &cf); err != nil || len(cf.Services) == 0 {
		return "", "", false
	}

	// Sorted keys keep the tie-break deterministic across runs.
	keys := make([]string, 0, len(cf.Services))
	for k := range cf.Services {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, dialect := range []Dialect{DialectMariaDB, DialectMySQL} {
		for _, key := range keys {
			svc := cf.Services[key]
			haystack := strings.ToLower(svc.Image + " " + key)
			if !strings.Contains(haystack, string(dialect)) {
				continue
			}
			if svc.ContainerName != "" {
				return dialect, svc.ContainerName, true
			}
			return dialect, key, true
		}
	}
	return "", "", false
}

var (
	containerNameRe = regexp.MustCompile(`(?i)^\s*container_name:\s*["']?([\w.-]+)["']?`)
	serviceKeyRe    = regexp.MustCompile(`^  ([\w.-]+):\s*$`)
)

// resolveFromText is the fallback for descriptors that fail YAML parsing.
// It finds the first dialect keyword line (MariaDB before MySQL), then an
// explicit container_name within nameWindow lines around it, and finally
// the nearest service-block key above it.
func resolveFromText(content string) (Dialect, string, bool) {
	lines := strings.Split(content, "\n")

	for _, dialect := range []Dialect{DialectMariaDB, DialectMySQL} {
		idx := -1
		for i, line := range lines {
			if strings.Contains(strings.ToLower(line), string(dialect)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		lo := idx - nameWindow
		if lo < 0 {
			lo = 0
		}
		hi := idx + nameWindow
		if hi >= len(lines) {
			hi = len(lines) - 1
		}
		for i := lo; i <= hi; i++ {
			if m := containerNameRe.FindStringSubmatch(lines[i]); m != nil {
				return dialect, m[1], true
			}
		}

		for i := idx; i >= 0; i-- {
			if m := serviceKeyRe.FindStringSubmatch(lines[i]); m != nil {
				return dialect, m[1], true
			}
		}
	}
	return "", "", false
}

// CheckContainerRunning verifies the named container appears in the active
// container listing before any database operation touches it.
func CheckContainerRunning(ctx context.Context, runner CommandRunner, name string) error {
	for _, running := range ListRunningContainers(ctx, runner) {
		if running == name {
			return nil
		}
	}
	return apperrors.NewContainerNotRunning(
		fmt.Sprintf("container %q is not running", name), nil)
}
