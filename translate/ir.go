package translate

import (
	"fmt"
	"strings"

	"github.com/guestgraph/guestgraph/helper"
)

// Step is a single traversal step, eg. hasLabel('Hotel') or limit(10).
type Step struct {
	Name string
	Args string
}

func (s Step) String() string {
	return fmt.Sprintf("%s(%s)", s.Name, s.Args)
}

// Query is the parsed form of a Gremlin traversal. Repairs operate on
// this structure and the result is rendered back to text last, so no
// repair ever has to do raw string surgery on the query.
type Query struct {
	Steps []Step
}

// ParseQuery splits a traversal of the form g.step(args).step(args)...
// into its steps. Quotes and nested parentheses inside step arguments
// are respected, so where(__.out('WRITTEN_IN').has('code', 'tr'))
// parses as a single step.
func ParseQuery(query string) (*Query, error) {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(trimmed, "g.") {
		return nil, helper.NewError("ParseQuery", fmt.Errorf("query does not start with g.: %q", query))
	}

	rest := trimmed[len("g."):]
	parsed := &Query{}

	for len(rest) > 0 {
		open := strings.IndexByte(rest, '(')
		if open <= 0 {
			return nil, helper.NewError("ParseQuery", fmt.Errorf("step without arguments at %q", rest))
		}
		name := rest[:open]
		if strings.ContainsAny(name, " .)'") {
			return nil, helper.NewError("ParseQuery", fmt.Errorf("invalid step name %q", name))
		}

		end, err := matchParen(rest, open)
		if err != nil {
			return nil, helper.NewError("ParseQuery", err)
		}

		parsed.Steps = append(parsed.Steps, Step{Name: name, Args: rest[open+1 : end]})
		rest = rest[end+1:]

		switch {
		case rest == "":
		case strings.HasPrefix(rest, "."):
			rest = rest[1:]
		default:
			return nil, helper.NewError("ParseQuery", fmt.Errorf("unexpected trailing text %q", rest))
		}
	}

	if len(parsed.Steps) == 0 {
		return nil, helper.NewError("ParseQuery", fmt.Errorf("empty traversal %q", query))
	}
	return parsed, nil
}

// matchParen returns the index of the parenthesis closing the one at
// open, skipping over single-quoted strings.
func matchParen(s string, open int) (int, error) {
	depth := 0
	inQuote := false
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\'':
			inQuote = !inQuote
		case '(':
			if !inQuote {
				depth++
			}
		case ')':
			if !inQuote {
				depth--
				if depth == 0 {
					return i, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("unbalanced parentheses in %q", s)
}

// Render writes the traversal back out as query text.
func (q *Query) Render() string {
	var b strings.Builder
	b.WriteString("g")
	for _, s := range q.Steps {
		b.WriteString(".")
		b.WriteString(s.String())
	}
	return b.String()
}

// BaseLabel returns the label of the first hasLabel step, or "".
func (q *Query) BaseLabel() string {
	for _, s := range q.Steps {
		if s.Name == "hasLabel" {
			return strings.Trim(s.Args, "'")
		}
	}
	return ""
}

// HasStep reports whether any step carries the given name.
func (q *Query) HasStep(name string) bool {
	for _, s := range q.Steps {
		if s.Name == name {
			return true
		}
	}
	return false
}

// ContainsText reports whether the rendered traversal mentions the
// given fragment anywhere, step names and arguments included.
func (q *Query) ContainsText(fragment string) bool {
	return strings.Contains(q.Render(), fragment)
}

// InsertAfter inserts a step directly after the first step named after.
// If no such step exists the query is unchanged and false is returned.
func (q *Query) InsertAfter(after string, step Step) bool {
	for i, s := range q.Steps {
		if s.Name == after {
			q.Steps = append(q.Steps[:i+1], append([]Step{step}, q.Steps[i+1:]...)...)
			return true
		}
	}
	return false
}

// Append adds a step to the end of the traversal.
func (q *Query) Append(step Step) {
	q.Steps = append(q.Steps, step)
}
