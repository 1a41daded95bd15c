package core

import "context"

// Entry is a single directory entry returned by a successful lookup.
// Attribute names keep the casing the directory server returned.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

// Value returns the first value of the named attribute, or "" if the
// attribute is absent or empty.
func (e *Entry) Value(name string) string {
	values := e.Attributes[name]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Values returns all values of the named attribute. The returned slice is
// nil when the attribute is absent.
func (e *Entry) Values(name string) []string {
	return e.Attributes[name]
}

// DirectorySession is the interface that credential-verifying directory
// backends must implement. A successful call returns the entry matched by
// the directory search.
type DirectorySession interface {
	Authenticate(ctx context.Context, username, password string) (*Entry, error)
	Name() string
}
