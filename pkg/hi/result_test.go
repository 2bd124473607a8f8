package hi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultEncoding(t *testing.T) {
	assert.Equal(t, NotFound, decodeResult(NotFound.encode()))

	r := Result{raw: []byte(`{"gender":"female"}`)}
	back := decodeResult(r.encode())
	assert.True(t, back.Found())
	assert.Equal(t, "female", back.Get("gender").String())
	assert.Equal(t, `{"gender":"female"}`, back.String())
	assert.Equal(t, "", NotFound.String())
}

func TestExtract(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"success":false,"results":[{"gender":"male"}]}`))
	require.NoError(t, err)
	r, err := Extract(doc)
	require.NoError(t, err)
	assert.False(t, r.Found())

	doc, err = ParseJSON([]byte(`{"results":[{"gender":"male"}]}`))
	require.NoError(t, err)
	r, err = Extract(doc)
	require.NoError(t, err)
	assert.False(t, r.Found(), "missing success means no match")
}

func TestParseJSONRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not-json", `{"success":`} {
		_, err := ParseJSON([]byte(in))
		var le *LookupError
		require.ErrorAs(t, err, &le, in)
		assert.Equal(t, StageParse, le.Stage)
		assert.ErrorIs(t, err, errMalformedJSON)
	}
}

func TestLookupErrorFormat(t *testing.T) {
	err := &LookupError{Stage: StageParse, Err: errors.New("boom")}
	assert.Equal(t, "hi: parse: boom", err.Error())

	err = &LookupError{Stage: StageFetch, URL: "http://x?name=a", Err: errors.New("timeout")}
	assert.Equal(t, "hi: fetch http://x?name=a: timeout", err.Error())
	assert.True(t, errors.Is(err, ErrLookup))
	assert.False(t, errors.Is(errors.New("other"), ErrLookup))
}
