// Package validation runs ordered, non-short-circuiting rule lists over
// submitted form fields and collects one message per failed rule.
package validation

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const DateLayout = "2006-01-02"

var validate = validator.New()

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of failed rules. It is returned as an error
// only when non-empty.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Err returns e as an error, or nil when it is empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Input is a submitted value together with whether it was submitted at all.
type Input struct {
	Value   string
	Present bool
}

func Of(p *string) Input {
	if p == nil {
		return Input{}
	}
	return Input{Value: *p, Present: true}
}

func Value(s string) Input { return Input{Value: s, Present: true} }

// Rule inspects a sanitized value and returns a message when it fails.
type Rule func(v string) string

type Checker struct {
	errs Errors
}

func New() *Checker { return &Checker{} }

func (c *Checker) Errors() Errors { return c.errs }

func (c *Checker) Err() error { return c.errs.Err() }

func (c *Checker) Add(field, message string) { c.errs.Add(field, message) }

func (c *Checker) Field(name string, in Input) *FieldCheck {
	return &FieldCheck{parent: c, name: name, value: in.Value, present: in.Present}
}

type FieldCheck struct {
	parent   *Checker
	name     string
	value    string
	present  bool
	optional bool
}

func (f *FieldCheck) Trim() *FieldCheck {
	f.value = strings.TrimSpace(f.value)
	return f
}

// Escape HTML-escapes the value. Already escaped input is not escaped twice.
func (f *FieldCheck) Escape() *FieldCheck {
	f.value = html.EscapeString(html.UnescapeString(f.value))
	return f
}

// Optional skips the rules when the field was omitted or left blank.
// "0" and "false" count as provided.
func (f *FieldCheck) Optional() *FieldCheck {
	f.optional = true
	return f
}

func (f *FieldCheck) Provided() bool {
	return f.present && f.value != ""
}

func (f *FieldCheck) Check(rules ...Rule) *FieldCheck {
	if f.optional && !f.Provided() {
		return f
	}
	for _, rule := range rules {
		if msg := rule(f.value); msg != "" {
			f.parent.errs.Add(f.name, msg)
		}
	}
	return f
}

func (f *FieldCheck) Value() string { return f.value }

func MinLength(n int, msg string) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) < n {
			return msg
		}
		return ""
	}
}

func MaxLength(n int, msg string) Rule {
	return func(v string) string {
		if utf8.RuneCountInString(v) > n {
			return msg
		}
		return ""
	}
}

func Alphanumeric(msg string) Rule {
	return tagRule("alphanum", msg)
}

// ISODate accepts a calendar date or a full RFC 3339 timestamp.
func ISODate(msg string) Rule {
	return func(v string) string {
		if ParseDate(v) == nil {
			return msg
		}
		return ""
	}
}

func URL(msg string) Rule {
	return func(v string) string {
		if strings.HasPrefix(v, "/") {
			return ""
		}
		if validate.Var(v, "url") != nil {
			return msg
		}
		return ""
	}
}

func OneOf(msg string, options ...string) Rule {
	return func(v string) string {
		for _, o := range options {
			if v == o {
				return ""
			}
		}
		return msg
	}
}

func Integer(min int, msg string) Rule {
	return func(v string) string {
		n, err := strconv.Atoi(v)
		if err != nil || n < min {
			return msg
		}
		return ""
	}
}

func Pattern(re *regexp.Regexp, msg string) Rule {
	return func(v string) string {
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

func Decimal(msg string) Rule {
	return tagRule("numeric", msg)
}

func Boolean(msg string) Rule {
	return tagRule("boolean", msg)
}

func tagRule(tag, msg string) Rule {
	return func(v string) string {
		if err := validate.Var(v, tag); err != nil {
			return msg
		}
		return ""
	}
}

// ParseDate converts a checked ISO date. Blank or malformed input yields nil.
func ParseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	if validate.Var(v, "datetime="+DateLayout) == nil {
		t, _ := time.Parse(DateLayout, v)
		return &t
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

func ParseInt(v string) *int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func ParseBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

func ParseFloat(v string) *float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

// IDs trims and escapes a list of references, dropping blanks. Stored
// reference arrays are never null.
func IDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = html.EscapeString(html.UnescapeString(strings.TrimSpace(id)))
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
