package cache

import (
	"path/filepath"
	"regexp"
	"strings"
)

// classifyRule maps a predicate over (path, content) to a DocType. Rules are
// evaluated in order and the first match wins; there is no fallback scoring.
type classifyRule struct {
	name    string
	matches func(path, content string) (DocType, bool)
}

var incidentSectionRe = regexp.MustCompile(`(?im)^#{1,6}.*5[ -]whys`)

var classifyRules = []classifyRule{
	{
		name: "standards",
		matches: func(path, _ string) (DocType, bool) {
			if pathHasSegment(path, "standards") {
				return DocTypeStandard, true
			}
			return "", false
		},
	},
	{
		name: "incidents",
		matches: func(path, content string) (DocType, bool) {
			if !pathHasSegment(path, "incidents") {
				return "", false
			}
			base := strings.ToLower(filepath.Base(path))
			if incidentSectionRe.MatchString(content) || strings.Contains(base, "incident_") {
				return DocTypeIncident, true
			}
			return DocTypeTask, true
		},
	},
	{
		name: "projects",
		matches: func(path, _ string) (DocType, bool) {
			if pathHasSegment(path, "projects") {
				return DocTypeProject, true
			}
			return "", false
		},
	},
}

// Classify assigns a DocType from path and content markers. Order matters:
// standards beat incidents beat projects; everything else is a plain document.
func Classify(path, content string) DocType {
	for _, rule := range classifyRules {
		if dt, ok := rule.matches(path, content); ok {
			return dt
		}
	}
	return DocTypeDocument
}

// pathHasSegment reports whether any slash-delimited segment of path
// contains marker, case-insensitively. Matching on segments rather than the
// raw string avoids false positives from document titles in filenames.
func pathHasSegment(path, marker string) bool {
	norm := strings.ToLower(filepath.ToSlash(path))
	for _, seg := range strings.Split(norm, "/") {
		if strings.Contains(seg, marker) {
			return true
		}
	}
	return false
}
