package hi

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// notFoundValue is what the negative sentinel is stored as.
var notFoundValue = []byte("false")

// NotFound is the negative sentinel: the service had no match for the query.
var NotFound = Result{}

// Result is the first record the service returned for a query. Its shape is
// owned by the service; use Get to read fields out of it.
type Result struct {
	raw json.RawMessage
}

// Found reports whether r holds a match rather than the negative sentinel.
func (r Result) Found() bool { return r.raw != nil }

// Raw returns the record as the service sent it, or nil for NotFound.
func (r Result) Raw() json.RawMessage { return r.raw }

// Get reads a gjson path from the record.
func (r Result) Get(path string) gjson.Result { return gjson.GetBytes(r.raw, path) }

// String returns the record's string value when it is a JSON string, its raw
// JSON text otherwise, and "" for NotFound.
func (r Result) String() string {
	if !r.Found() {
		return ""
	}
	v := gjson.ParseBytes(r.raw)
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}

func (r Result) encode() []byte {
	if !r.Found() {
		return notFoundValue
	}
	return r.raw
}

func decodeResult(b []byte) Result {
	if bytes.Equal(b, notFoundValue) {
		return NotFound
	}
	return Result{raw: json.RawMessage(b)}
}
