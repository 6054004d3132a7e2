package repo

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const ignoreFileName = ".groveignore"

// IgnoreChecker determines if a path should be ignored.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // anchored: match against the full relative path
	regex    *regexp.Regexp
}

// NewIgnoreChecker creates an IgnoreChecker for the given repository root.
// It always ignores .grove/ and .git/. If a .groveignore file exists in
// repoRoot, its patterns are parsed and applied.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	ic := &IgnoreChecker{}

	f, err := os.Open(filepath.Join(repoRoot, ignoreFileName))
	if err == nil {
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if p := parseIgnoreLine(scanner.Text()); p != nil {
				ic.patterns = append(ic.patterns, *p)
			}
		}
	}
	return ic
}

// parseIgnoreLine parses a single line from a .groveignore file. Returns
// nil if the line is empty or a comment.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")

	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}

	// Negation: lines starting with ! un-ignore a pattern.
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}

	// Directory-only: lines ending with / match directories only.
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}

	// A leading slash anchors the pattern to the repository root.
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimPrefix(line, "/")

	p.hasSlash = anchored || strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored checks whether a relative path should be ignored. The path
// should use forward slashes and be relative to the repository root.
// State directories (.grove, .git) are always ignored; among file
// patterns, the last matching pattern wins so negations apply.
func (ic *IgnoreChecker) IsIgnored(path string, isDir bool) bool {
	path = filepath.ToSlash(path)
	if path == "" || path == "." {
		return false
	}
	if hasStateDirSegment(path) {
		return true
	}

	ignored := false
	for i := range ic.patterns {
		p := &ic.patterns[i]
		if p.matches(path, isDir) {
			ignored = !p.negated
		}
	}
	return ignored
}

func hasStateDirSegment(path string) bool {
	for {
		seg, rest, more := strings.Cut(path, "/")
		if seg == groveDirName || seg == ".git" {
			return true
		}
		if !more {
			return false
		}
		path = rest
	}
}

// matches reports whether this pattern applies to the given path. A
// pattern that matches a directory also covers everything beneath it.
func (p *ignorePattern) matches(path string, isDir bool) bool {
	target := path
	if !p.hasSlash {
		target = lastSegment(path)
	}

	if p.dirOnly {
		if isDir && p.match(target) {
			return true
		}
		return p.matchesAncestor(path)
	}

	if p.match(target) {
		return true
	}
	return p.matchesAncestor(path)
}

// matchesAncestor checks the pattern against every proper ancestor
// directory of path.
func (p *ignorePattern) matchesAncestor(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] != '/' {
			continue
		}
		target := path[:i]
		if !p.hasSlash {
			target = lastSegment(target)
		}
		if p.match(target) {
			return true
		}
	}
	return false
}

func (p *ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := filepath.Match(p.pattern, target)
	return matched
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				if i+2 < len(pattern) && pattern[i+2] == '/' {
					// Globstar directory segment: match zero or more path segments.
					b.WriteString("(?:.*/)?")
					i += 2
				} else {
					b.WriteString(".*")
					i++
				}
				continue
			}
			b.WriteString("[^/]*")
			continue
		}
		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}
		if strings.ContainsRune(`.+()|[]{}^$\\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	b.WriteString("$")
	return b.String()
}
