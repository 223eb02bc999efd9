// README: Parse pipeline for model output: extraction, strict parse, lexical repair, validation.
package itinerary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrNoJSONObject     = errors.New("no JSON object in model output")
	ErrMalformedJSON    = errors.New("model output is not valid JSON after repair")
	ErrMissingItinerary = errors.New("model output has no itinerary array")
	ErrEmptyItinerary   = errors.New("model output has no scheduled activities")
)

type repairPass struct {
	name string
	fn   func([]byte) []byte
}

// Passes run in order over the same buffer; each is a no-op on valid JSON.
var repairPasses = []repairPass{
	{"quotes", normalizeQuotes},
	{"bare-keys", quoteBareKeys},
	{"trailing-commas", stripTrailingCommas},
}

// ParseItinerary turns raw model text into a validated, normalized itinerary.
// It never panics; any failure is reported as an error so the caller can fall back.
func ParseItinerary(raw string) (*Itinerary, error) {
	body, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	fields, err := decodeObject(body)
	if err != nil {
		repaired := body
		for _, p := range repairPasses {
			repaired = p.fn(repaired)
		}
		fields, err = decodeObject(repaired)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
		}
	}

	rawDays, ok := fields["itinerary"]
	if !ok {
		return nil, ErrMissingItinerary
	}
	var it Itinerary
	if err := json.Unmarshal(rawDays, &it.Days); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingItinerary, err)
	}
	if len(it.Days) == 0 {
		return nil, ErrMissingItinerary
	}
	if err := normalize(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(raw string) ([]byte, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSONObject
	}
	return []byte(raw[start : end+1]), nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// normalize drops empty days, renumbers days 1..n, and makes activity ids unique.
func normalize(it *Itinerary) error {
	days := lo.Filter(it.Days, func(d DaySchedule, _ int) bool {
		return len(d.Activities) > 0
	})
	if len(days) == 0 {
		return ErrEmptyItinerary
	}

	seen := make(map[string]struct{})
	for i := range days {
		days[i].Day = i + 1
		for j := range days[i].Activities {
			a := &days[i].Activities[j]
			a.Category = NormalizeCategory(string(a.Category))
			a.ID = uniqueID(strings.TrimSpace(a.ID), days[i].Day, j+1, seen)
			if a.Details != nil && a.Details.empty() {
				a.Details = nil
			}
		}
	}
	it.Days = days
	return nil
}

func uniqueID(id string, day, idx int, seen map[string]struct{}) string {
	if id == "" {
		id = fmt.Sprintf("%d-%d", day, idx)
	}
	candidate := id
	for n := 2; ; n++ {
		if _, dup := seen[candidate]; !dup {
			break
		}
		candidate = fmt.Sprintf("%s-%d", id, n)
	}
	seen[candidate] = struct{}{}
	return candidate
}

// normalizeQuotes rewrites single-quoted strings as double-quoted ones,
// escaping embedded double quotes. Double-quoted strings are copied verbatim.
func normalizeQuotes(in []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(in))
	var inDouble, inSingle, escaped bool
	for _, c := range in {
		switch {
		case inDouble:
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inDouble = false
			}
		case inSingle:
			switch {
			case escaped:
				escaped = false
				if c != '\'' {
					out.WriteByte('\\')
				}
				out.WriteByte(c)
			case c == '\\':
				escaped = true
			case c == '\'':
				out.WriteByte('"')
				inSingle = false
			case c == '"':
				out.WriteString(`\"`)
			default:
				out.WriteByte(c)
			}
		case c == '"':
			inDouble = true
			out.WriteByte(c)
		case c == '\'':
			inSingle = true
			out.WriteByte('"')
		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

// quoteBareKeys quotes identifiers used as object keys, i.e. an identifier
// that follows '{' or ',' and is followed by ':'. String contents are skipped.
func quoteBareKeys(in []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(in) + 32)
	var inString, escaped bool
	var prev byte // last significant byte outside strings
	for i := 0; i < len(in); i++ {
		c := in[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				prev = '"'
			}
			continue
		}
		if c == '"' {
			inString = true
			out.WriteByte(c)
			continue
		}
		if isIdentStart(c) && (prev == '{' || prev == ',') {
			j := i
			for j < len(in) && isIdentPart(in[j]) {
				j++
			}
			k := j
			for k < len(in) && isSpace(in[k]) {
				k++
			}
			if k < len(in) && in[k] == ':' {
				out.WriteByte('"')
				out.Write(in[i:j])
				out.WriteByte('"')
			} else {
				out.Write(in[i:j])
			}
			prev = in[j-1]
			i = j - 1
			continue
		}
		out.WriteByte(c)
		if !isSpace(c) {
			prev = c
		}
	}
	return out.Bytes()
}

// stripTrailingCommas removes a comma that directly precedes '}' or ']'.
func stripTrailingCommas(in []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(in))
	var inString, escaped bool
	for i := 0; i < len(in); i++ {
		c := in[i]
		if inString {
			out.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			k := i + 1
			for k < len(in) && isSpace(in[k]) {
				k++
			}
			if k < len(in) && (in[k] == '}' || in[k] == ']') {
				continue
			}
		}
		out.WriteByte(c)
	}
	return out.Bytes()
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
