package serve

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// MaxGreetBodySize caps the greet request body (1MB)
	MaxGreetBodySize = 1 << 20

	dataMessage = "Hello from the Go server!"

	// isoTimestampLayout renders UTC instants with millisecond precision,
	// e.g. 2026-10-19T08:15:30.042Z
	isoTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	// localTimeLayout is the human-readable time of day used in greetings
	localTimeLayout = "3:04:05 PM"

	// Placeholders for names that are not strings
	missingName = "undefined"
	nullName    = "null"
	objectName  = "[object Object]"
)

// GreetRequest is the parsed body of POST /api/greet. Name holds the
// rendered name, which is a placeholder when the body carries no usable
// string.
type GreetRequest struct {
	Name string `json:"name"`
}

// ParseGreetRequest parses a greet body. The body must hold exactly one JSON
// value other than null. An object's "name" member is rendered as text;
// anything without that member renders as "undefined".
func ParseGreetRequest(body []byte) (*GreetRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequestBody, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedRequestBody)
	}

	switch t := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: body is null", ErrMalformedRequestBody)
	case map[string]any:
		name, ok := t["name"]
		if !ok {
			return &GreetRequest{Name: missingName}, nil
		}
		return &GreetRequest{Name: renderName(name)}, nil
	default:
		return &GreetRequest{Name: missingName}, nil
	}
}

// Greeting renders the greeting for this request at the given local time
func (g *GreetRequest) Greeting(at time.Time) string {
	return fmt.Sprintf("Hello, %s! The server received your name at %s", g.Name, at.Format(localTimeLayout))
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(isoTimestampLayout)
}

func renderName(v any) string {
	switch t := v.(type) {
	case nil:
		return nullName
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return renderNumber(t)
	case []any:
		parts := make([]string, len(t))
		for i, elem := range t {
			if elem == nil {
				continue
			}
			parts[i] = renderName(elem)
		}
		return strings.Join(parts, ",")
	default:
		return objectName
	}
}

// renderNumber formats a JSON number the way JavaScript's Number#toString
// does: overflow becomes Infinity, negative zero becomes 0, and magnitudes
// outside [1e-6, 1e21) use exponent notation without exponent padding.
func renderNumber(n json.Number) string {
	// the decoder has already validated the syntax, so the only possible
	// error is ErrRange, which leaves f at ±Inf or 0
	f, _ := strconv.ParseFloat(string(n), 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mantissa + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
