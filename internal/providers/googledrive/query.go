package googledrive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrInvalidFolderID = errors.New("invalid folder ID")
	ErrInvalidName     = errors.New("invalid name")

	folderIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
)

// Query builds a Drive files.list "q" expression. Values are validated or escaped
// as they are added; the first failure is reported by Build.
type Query struct {
	clauses []string
	err     error
}

func NewQuery() *Query {
	return &Query{}
}

// NameEquals matches files with exactly this name
func (q *Query) NameEquals(name string) *Query {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "\x00\n\r") {
		q.fail(fmt.Errorf("%w: %q", ErrInvalidName, name))
		return q
	}
	q.clauses = append(q.clauses, fmt.Sprintf("name = '%s'", escapeLiteral(name)))
	return q
}

func (q *Query) MimeTypeEquals(mimeType string) *Query {
	q.clauses = append(q.clauses, fmt.Sprintf("mimeType = '%s'", escapeLiteral(mimeType)))
	return q
}

func (q *Query) MimeTypeContains(fragment string) *Query {
	q.clauses = append(q.clauses, fmt.Sprintf("mimeType contains '%s'", escapeLiteral(fragment)))
	return q
}

// InParents restricts results to direct children of folderID
func (q *Query) InParents(folderID string) *Query {
	if err := ValidateFolderID(folderID); err != nil {
		q.fail(err)
		return q
	}
	q.clauses = append(q.clauses, fmt.Sprintf("'%s' in parents", folderID))
	return q
}

func (q *Query) NotTrashed() *Query {
	q.clauses = append(q.clauses, "trashed = false")
	return q
}

// Build returns the query expression
func (q *Query) Build() (string, error) {
	if q.err != nil {
		return "", q.err
	}
	if len(q.clauses) == 0 {
		return "", errors.New("empty query")
	}
	return strings.Join(q.clauses, " and "), nil
}

func (q *Query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

// ValidateFolderID checks that id looks like a Drive file ID
func ValidateFolderID(id string) error {
	if !folderIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidFolderID, id)
	}
	return nil
}

// escapeLiteral escapes a value for use inside a single-quoted query string
func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
