package domain

import (
	"strings"
	"unicode"

	dErrors "medledger/pkg/domain-errors"
)

// ContentRef is an opaque content-addressed handle for a blob held in the
// content store. Refs produced by this service look like "sha256-<hex>";
// externally produced refs (e.g. IPFS CIDs) are accepted as-is.
type ContentRef string

const maxContentRefLen = 128

// ParseContentRef validates a content reference from external input.
func ParseContentRef(s string) (ContentRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "content ref cannot be empty")
	}
	if len(s) > maxContentRefLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "content ref is too long")
	}
	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "content ref contains invalid characters")
		}
	}
	return ContentRef(s), nil
}

func (r ContentRef) String() string { return string(r) }

// IsNil reports whether the ref is empty.
func (r ContentRef) IsNil() bool { return r == "" }
