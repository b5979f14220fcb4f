// Package batch loads batch manifests, submits them to the API and collects a
// per-repository report.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/hackwreck/internal/domain/model"
)

// ReasonNoStatus marks an entry that has neither its own status nor a default.
const ReasonNoStatus = "No status"

// Rejected is an entry refused before submission.
type Rejected struct {
	Line      int    `json:"line,omitempty" yaml:"line,omitempty"`
	GitHubURL string `json:"github_url" yaml:"github_url"`
	Reason    string `json:"reason" yaml:"reason"`
}

// Manifest is the parsed content of a batch file.
type Manifest struct {
	Items    []model.BatchItem
	Rejected []Rejected
}

// Total counts every entry, accepted or not.
func (m Manifest) Total() int { return len(m.Items) + len(m.Rejected) }

type yamlManifest struct {
	DefaultStatus string            `yaml:"default_status"`
	Items         []model.BatchItem `yaml:"items"`
}

// Load reads path as YAML when it ends in .yaml or .yml, and as the line
// format otherwise.
func Load(path, defaultStatus string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f, defaultStatus)
	}
	return ParseLines(f, defaultStatus)
}

// ParseLines reads one entry per line, either "url, status" or a bare url that
// takes defaultStatus. Blank lines and lines starting with # are skipped. Only
// the first comma separates the status.
func ParseLines(r io.Reader, defaultStatus string) (Manifest, error) {
	var m Manifest
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		link, status := line, defaultStatus
		if before, after, ok := strings.Cut(line, ","); ok {
			link, status = strings.TrimSpace(before), strings.TrimSpace(after)
		}
		m.add(n, link, status)
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return m.check()
}

// ParseYAML reads a manifest of the form
//
//	default_status: Participant
//	items:
//	  - github_url: https://github.com/owner/repo
//	    status: Winner
//
// An explicit defaultStatus argument overrides the file's default.
func ParseYAML(r io.Reader, defaultStatus string) (Manifest, error) {
	var doc yamlManifest
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return Manifest{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if defaultStatus == "" {
		defaultStatus = doc.DefaultStatus
	}
	var m Manifest
	for _, it := range doc.Items {
		status := strings.TrimSpace(it.Status)
		if status == "" {
			status = defaultStatus
		}
		m.add(0, strings.TrimSpace(it.GitHubURL), status)
	}
	return m.check()
}

func (m *Manifest) add(line int, link, status string) {
	status = strings.TrimSpace(status)
	if status == "" {
		m.Rejected = append(m.Rejected, Rejected{Line: line, GitHubURL: link, Reason: ReasonNoStatus})
		return
	}
	if o, err := model.ParseOutcome(status); err == nil {
		status = o.Place()
	}
	m.Items = append(m.Items, model.BatchItem{GitHubURL: link, Status: status})
}

func (m *Manifest) check() (Manifest, error) {
	if m.Total() == 0 {
		return Manifest{}, ErrEmptyManifest
	}
	return *m, nil
}
