package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCheckCollectsEveryFailedRule(t *testing.T) {
	v := New()
	v.Field("title", Of(strPtr("  "))).Trim().Check(
		MinLength(1, "Title must not be empty."),
		MinLength(3, "Title is too short."),
	)
	v.Field("summary", Of(nil)).Check(MinLength(1, "Summary must not be empty."))

	errs := v.Errors()
	require.Len(t, errs, 3)
	assert.Equal(t, FieldError{Field: "title", Message: "Title must not be empty."}, errs[0])
	assert.Equal(t, FieldError{Field: "title", Message: "Title is too short."}, errs[1])
	assert.Equal(t, "summary", errs[2].Field)
	assert.Error(t, v.Err())
}

func TestSanitizedValueIsReturned(t *testing.T) {
	v := New()
	got := v.Field("name", Value("  Rock & Roll <live> ")).Trim().Escape().Check(MinLength(3, "short")).Value()

	assert.Equal(t, "Rock &amp; Roll &lt;live&gt;", got)
	assert.NoError(t, v.Err())
}

func TestEscapeIsIdempotent(t *testing.T) {
	v := New()
	once := v.Field("name", Value("R&B")).Escape().Value()
	twice := v.Field("name", Value(once)).Escape().Value()

	assert.Equal(t, once, twice)
}

func TestOptionalSkipsOnlyWhenBlankOrOmitted(t *testing.T) {
	v := New()
	v.Field("discogs_id", Of(nil)).Optional().Check(Alphanumeric("bad"))
	v.Field("discogs_id", Value("")).Optional().Check(Alphanumeric("bad"))
	assert.NoError(t, v.Err())

	v.Field("num_discs", Value("0")).Optional().Check(Integer(1, "Number of discs must be at least 1."))
	require.Len(t, v.Errors(), 1)
	assert.Equal(t, "num_discs", v.Errors()[0].Field)
}

func TestFormatRules(t *testing.T) {
	cases := []struct {
		name  string
		rule  Rule
		value string
		ok    bool
	}{
		{"alnum ok", Alphanumeric("x"), "abc123", true},
		{"alnum bad", Alphanumeric("x"), "abc-123", false},
		{"date ok", ISODate("x"), "2024-02-29", true},
		{"date bad", ISODate("x"), "29/02/2024", false},
		{"oneof ok", OneOf("x", "Available", "Loaned"), "Loaned", true},
		{"oneof bad", OneOf("x", "Available", "Loaned"), "loaned", false},
		{"decimal ok", Decimal("x"), "12.50", true},
		{"decimal bad", Decimal("x"), "twelve", false},
		{"url relative", URL("x"), "/assets/default.png", true},
		{"url absolute", URL("x"), "https://img.example.com/a.png", true},
		{"url bad", URL("x"), "not a url", false},
		{"bool ok", Boolean("x"), "false", true},
		{"max ok", MaxLength(3, "x"), "abc", true},
		{"max bad", MaxLength(3, "x"), "abcd", false},
		{"pattern ok", Pattern(regexp.MustCompile(`^\d+:\d{2}$`), "x"), "4:05", true},
		{"pattern bad", Pattern(regexp.MustCompile(`^\d+:\d{2}$`), "x"), "4m05", false},
		{"rfc3339 date", ISODate("x"), "2024-02-29T00:00:00Z", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.rule(tc.value)
			if tc.ok {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, "x", got)
			}
		})
	}
}

func TestParsers(t *testing.T) {
	d := ParseDate("2023-05-01")
	require.NotNil(t, d)
	assert.Equal(t, 2023, d.Year())
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("01/05/2023"))

	assert.Equal(t, 2, *ParseInt("2"))
	assert.Nil(t, ParseInt("two"))
	assert.InDelta(t, 9.99, *ParseFloat("9.99"), 0.0001)
	assert.True(t, ParseBool("true"))
	assert.False(t, ParseBool("nope"))
}

func TestIDsDropsBlanksAndNeverReturnsNil(t *testing.T) {
	assert.Equal(t, []string{}, IDs(nil))
	assert.Equal(t, []string{"a", "b"}, IDs([]string{" a ", "", "b"}))
}
