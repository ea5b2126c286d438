package querysql

import "strings"

// Conditions accumulates WHERE or HAVING fragments.
//
// Fragments are formatted as they are added; the first formatting error is
// kept and later additions are ignored, so builders can chain calls and
// check Err once at execution time.
type Conditions struct {
	formatter Formatter
	parts     []string
	err       error
}

// NewConditions creates an empty condition list using f.
func NewConditions(f Formatter) *Conditions {
	return &Conditions{formatter: f}
}

// Add formats template with args and appends it.
func (c *Conditions) Add(template string, args ...any) {
	if c.err != nil {
		return
	}
	out, err := c.formatter.Format(template, args...)
	if err != nil {
		c.err = err
		return
	}
	c.parts = append(c.parts, out)
}

// AddIf is Add gated on ok; when ok is false nothing is appended and the
// arguments are not validated.
func (c *Conditions) AddIf(ok bool, template string, args ...any) {
	if !ok {
		return
	}
	c.Add(template, args...)
}

// AddRaw appends sql without any processing.
func (c *Conditions) AddRaw(sql string) {
	if c.err != nil {
		return
	}
	c.parts = append(c.parts, sql)
}

// Len returns the number of fragments.
func (c *Conditions) Len() int {
	return len(c.parts)
}

// Err returns the first formatting error.
func (c *Conditions) Err() error {
	return c.err
}

// SQL returns the fragments parenthesized and AND-joined, or "" if empty.
func (c *Conditions) SQL() string {
	if len(c.parts) == 0 {
		return ""
	}
	return "(" + strings.Join(c.parts, ") AND (") + ")"
}
