package message

import "strings"

// CommitType is the kind of change a commit records
type CommitType string

const (
	Feature  CommitType = "feature"
	Fix      CommitType = "fix"
	Refactor CommitType = "refactor"
	Docs     CommitType = "docs"
	Test     CommitType = "test"
	Chore    CommitType = "chore"
	Perf     CommitType = "perf"
	Style    CommitType = "style"
)

// String returns the string representation of the commit type
func (c CommitType) String() string {
	return string(c)
}

// IsKnown reports whether the type is one of the built-in types
func (c CommitType) IsKnown() bool {
	switch c {
	case Feature, Fix, Refactor, Docs, Test, Chore, Perf, Style:
		return true
	default:
		return false
	}
}

// DisplayName returns the label shown in the panel
func (c CommitType) DisplayName() string {
	switch c {
	case Feature:
		return "Feature"
	case Fix:
		return "Bug fix"
	case Refactor:
		return "Refactor"
	case Docs:
		return "Documentation"
	case Test:
		return "Tests"
	case Chore:
		return "Chore"
	case Perf:
		return "Performance"
	case Style:
		return "Style"
	default:
		return string(c)
	}
}

// DefaultCommitType returns the type preselected in the panel
func DefaultCommitType() CommitType {
	return Feature
}

// ParseCommitType normalizes user input. Custom types from config are kept, lowercased.
func ParseCommitType(s string) CommitType {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultCommitType()
	}
	return CommitType(s)
}

// ParseCommitTypes parses a configured list, dropping blanks and duplicates
func ParseCommitTypes(values []string) []CommitType {
	seen := make(map[CommitType]bool, len(values))
	types := make([]CommitType, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		ct := ParseCommitType(v)
		if seen[ct] {
			continue
		}
		seen[ct] = true
		types = append(types, ct)
	}
	if len(types) == 0 {
		types = append(types, DefaultCommitType())
	}
	return types
}
