// Package validate holds the field predicates shared by live and submit-time
// validation. A predicate returns "" for a valid value and a user-facing
// message otherwise.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Func validates one field value.
type Func func(value string) string

// Messages shown inline next to the repository field.
const (
	MsgRepoRequired  = "GitHub URL is required"
	MsgRepoMalformed = "Please enter a valid GitHub repository URL (e.g., https://github.com/owner/repo)"
	MsgShowcase      = "Please enter a valid Devpost project URL (e.g., https://devpost.com/software/project)"
)

var (
	repoPattern     = regexp.MustCompile(`^https?://(www\.)?github\.com/[\w.-]+/[\w.-]+/?$`)
	showcasePattern = regexp.MustCompile(`^https?://(www\.)?devpost\.com/software/[\w.-]+/?$`)

	// owner/repo extraction for server-side checks; a trailing .git is tolerated.
	repoPartsPattern = regexp.MustCompile(`^https?://(?:www\.)?github\.com/([a-zA-Z0-9_-]+)/([a-zA-Z0-9._-]+?)(?:\.git)?/?$`)
)

// ErrInvalidRepoURL is returned when a repository URL cannot be normalized.
var ErrInvalidRepoURL = errors.New("invalid GitHub URL format, expected https://github.com/username/repo")

// GitHubRepo requires an http(s) github.com link to exactly owner/repo.
func GitHubRepo(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return MsgRepoRequired
	}
	if !repoPattern.MatchString(v) {
		return MsgRepoMalformed
	}
	return ""
}

// ShowcaseLink is optional; a non-empty value must be a devpost software page.
func ShowcaseLink(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !showcasePattern.MatchString(v) {
		return MsgShowcase
	}
	return ""
}

// Required builds a predicate that only rejects blank values.
func Required(label string) Func {
	msg := fmt.Sprintf("%s is required", label)
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return msg
		}
		return ""
	}
}

// OneOf builds a predicate accepting any of choices, case-insensitively.
func OneOf(label string, choices ...string) Func {
	return func(value string) string {
		v := strings.TrimSpace(value)
		for _, c := range choices {
			if strings.EqualFold(v, c) {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(choices, ", "))
	}
}

// RepoRef identifies a repository on GitHub.
type RepoRef struct {
	Owner string
	Repo  string
}

// String returns owner/repo.
func (r RepoRef) String() string { return r.Owner + "/" + r.Repo }

// ParseRepo extracts owner and repository name from a GitHub URL.
func ParseRepo(raw string) (RepoRef, error) {
	m := repoPartsPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return RepoRef{}, ErrInvalidRepoURL
	}
	return RepoRef{Owner: m[1], Repo: m[2]}, nil
}

// NormalizeRepoURL returns the canonical https://github.com/owner/repo form used
// as the duplicate key.
func NormalizeRepoURL(raw string) (string, error) {
	ref, err := ParseRepo(raw)
	if err != nil {
		return "", err
	}
	return "https://github.com/" + ref.String(), nil
}
