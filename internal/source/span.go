package source

import (
	"cmp"
	"fmt"
)

// Span is the byte range [Start, End) of one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.End == s.Start }

func (s Span) Len() uint32 { return s.End - s.Start }

// String prints file:start-end in bytes, for traces and test failures.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover grows s to include other. A span of another file leaves s as is.
func (s Span) Cover(other Span) Span {
	if s.File == other.File {
		s.Start = min(s.Start, other.Start)
		s.End = max(s.End, other.End)
	}
	return s
}

// Contains reports whether other lies inside s; equal spans contain each other.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && other.Start >= s.Start && other.End <= s.End
}

// Compare orders by file, then start, then end.
func (s Span) Compare(other Span) int {
	return cmp.Or(
		cmp.Compare(s.File, other.File),
		cmp.Compare(s.Start, other.Start),
		cmp.Compare(s.End, other.End),
	)
}
