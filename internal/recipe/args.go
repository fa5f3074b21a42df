package recipe

import (
	"errors"
	"strings"
)

var ErrRecipeFormat = errors.New("recipe: wrong recipe argument format")

// FormatError reports every malformed recipe argument token, in input order.
type FormatError struct {
	Tokens []string
}

func (e *FormatError) Error() string {
	return "Wrong format for " + pyList(e.Tokens) + ". Expected key=value"
}

func (e *FormatError) Is(target error) bool {
	return target == ErrRecipeFormat
}

// ParseArgs turns "k1=v1, k2=v2" into a map. Whitespace is dropped before
// splitting, and a repeated key keeps its last value. Entries that do not
// split on '=' into exactly two parts are collected into a FormatError and
// nothing is returned.
func ParseArgs(raw string) (map[string]string, error) {
	stripped := strings.Join(strings.Fields(raw), "")

	args := make(map[string]string)
	var wrong []string
	for _, entry := range strings.Split(stripped, ",") {
		parts := strings.Split(entry, "=")
		if len(parts) != 2 {
			wrong = append(wrong, parts...)
			continue
		}
		args[parts[0]] = parts[1]
	}
	if len(wrong) > 0 {
		return nil, &FormatError{Tokens: wrong}
	}
	return args, nil
}

// pyList renders tokens as a bracketed, single-quoted list: ['a', 'b'].
func pyList(tokens []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, tok := range tokens {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteToken(tok))
	}
	b.WriteByte(']')
	return b.String()
}

func quoteToken(tok string) string {
	if strings.Contains(tok, "'") && !strings.Contains(tok, `"`) {
		return `"` + strings.ReplaceAll(tok, `\`, `\\`) + `"`
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(tok) + "'"
}
