// Package panels describes the MycoBot panels: the fields each one collects
// and what it does with them. Front ends render the fields and call Run.
package panels

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	KindText     Kind = "text"
	KindLongText Kind = "long_text"
	KindSelect   Kind = "select"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
)

const DateLayout = "2006-01-02"

type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Options  []string
	Default  string
	Required bool
	// Min applies to number fields when HasMin is set.
	Min      float64
	HasMin   bool
	Decimals int
}

// Input is what a front end collected. Audio and Photo carry uploads.
type Input struct {
	Values map[string]string
	Audio  []byte
	Photo  []byte
}

// Output is what a panel shows back. Text is the main body; Notice is a
// secondary line such as a transcript. Table panels fill Header/Rows and
// offer CSV for download under CSVName.
type Output struct {
	Text    string
	Notice  string
	Header  []string
	Rows    [][]string
	CSV     string
	CSVName string
}

// InputError is the warning shown for missing or invalid input.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

// Values are validated field values keyed by Field.Key.
type Values map[string]string

type runFunc func(ctx context.Context, c *Catalog, v Values, in Input) (Output, error)

type Panel struct {
	Name   string
	Title  string
	Button string
	Fields []Field
	run    runFunc
}

// Usage renders a one-line hint such as "species=Agaricus|Oyster|Shiitake city=<text>".
func (p Panel) Usage() string {
	parts := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		var hint string
		switch f.Kind {
		case KindSelect:
			hint = strings.Join(f.Options, "|")
		case KindDate:
			hint = "<YYYY-MM-DD>"
		case KindNumber:
			hint = "<number>"
		default:
			hint = "<text>"
		}
		parts = append(parts, f.Key+"="+hint)
	}
	return strings.Join(parts, " ")
}

func (p Panel) resolve(in Input, today time.Time) (Values, error) {
	out := make(Values, len(p.Fields))
	for _, f := range p.Fields {
		raw := strings.TrimSpace(in.Values[f.Key])
		if raw == "" {
			raw = f.Default
			if raw == "" && f.Kind == KindDate {
				raw = today.Format(DateLayout)
			}
		}
		if raw == "" {
			if f.Required {
				return nil, &InputError{Field: f.Key, Message: fmt.Sprintf("Please enter %s.", strings.ToLower(f.Label))}
			}
			out[f.Key] = ""
			continue
		}
		v, err := f.normalize(raw)
		if err != nil {
			return nil, err
		}
		out[f.Key] = v
	}
	return out, nil
}

func (f Field) normalize(raw string) (string, error) {
	switch f.Kind {
	case KindSelect:
		for _, o := range f.Options {
			if strings.EqualFold(o, raw) {
				return o, nil
			}
		}
		return "", &InputError{Field: f.Key, Message: fmt.Sprintf("%s must be one of: %s.", f.Label, strings.Join(f.Options, ", "))}
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return "", &InputError{Field: f.Key, Message: fmt.Sprintf("%s must be a number.", f.Label)}
		}
		if f.HasMin && n < f.Min {
			return "", &InputError{Field: f.Key, Message: fmt.Sprintf("%s must be at least %s.", f.Label, strconv.FormatFloat(f.Min, 'f', -1, 64))}
		}
		return strconv.FormatFloat(n, 'f', f.Decimals, 64), nil
	case KindDate:
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return "", &InputError{Field: f.Key, Message: fmt.Sprintf("%s must be a date like 2025-01-31.", f.Label)}
		}
		return d.Format(DateLayout), nil
	}
	return raw, nil
}

// ParseArgs turns "key=value" tokens into a value map. A token without "="
// is appended to the previous value, so `city=New Delhi` survives naive
// whitespace splitting. Leading bare tokens go to fallbackKey.
func ParseArgs(tokens []string, fallbackKey string) map[string]string {
	out := map[string]string{}
	last := fallbackKey
	for _, tok := range tokens {
		if k, v, ok := strings.Cut(tok, "="); ok && k != "" && !strings.ContainsAny(k, " \t") {
			last = strings.ToLower(k)
			out[last] = v
			continue
		}
		if last == "" {
			continue
		}
		if out[last] == "" {
			out[last] = tok
		} else {
			out[last] += " " + tok
		}
	}
	return out
}
