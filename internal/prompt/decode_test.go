package prompt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string   `json:"title"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestDecodeJSON(t *testing.T) {
	want := sample{Title: "TV Guide", Count: 3, Tags: []string{"a", "b"}}
	raw := `{"title":"TV Guide","count":3,"tags":["a","b"]}`

	tests := []struct {
		name  string
		input string
	}{
		{"bare", raw},
		{"padded", "\n\n  " + raw + "  \n"},
		{"json fence", "```json\n" + raw + "\n```"},
		{"plain fence", "```\n" + raw + "\n```"},
		{"fence without newline", "```json" + raw + "```"},
		{"leading prose", "Here is the JSON you asked for:\n" + raw},
		{"trailing prose", raw + "\nLet me know if you need more."},
		{"fence then prose", "```json\n" + raw + "\n```\nHope this helps!"},
		{"control characters", "{\"title\":\"TV\x00 Guide\",\x07\"count\":3,\"tags\":[\"a\",\"b\"]}"},
		{"raw newline inside string", "{\"title\":\"TV\nGuide\",\"count\":3,\"tags\":[\"a\",\"b\"]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			require.NoError(t, DecodeJSON(tt.input, &got))
			assert.Equal(t, want.Count, got.Count)
			assert.Equal(t, want.Tags, got.Tags)
			assert.Equal(t, want.Title, got.Title)
		})
	}
}

func TestDecodeJSON_FenceEquivalence(t *testing.T) {
	payloads := []string{
		`{"a":1}`,
		`{"scores":{"factualityScore":7,"quantityScore":"8","genericityScore":6}}`,
		`{"nested":{"list":[1,2,3],"text":"with } brace"}}`,
		`{"empty":{}}`,
	}

	for _, p := range payloads {
		var plain, fenced map[string]any
		require.NoError(t, DecodeJSON(p, &plain))
		require.NoError(t, DecodeJSON("```json\n"+p+"\n```", &fenced))
		assert.Equal(t, plain, fenced, p)
	}
}

func TestDecodeJSON_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"prose only", "I cannot help with that request."},
		{"truncated", `{"title": "TV Guide", "count":`},
		{"reversed braces", "} nope {"},
		{"empty fence", "```json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got sample
			err := DecodeJSON(tt.input, &got)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`{"a":1}`))
	assert.Equal(t, "no fence", StripCodeFence("  no fence  "))
}

func TestStripControlChars(t *testing.T) {
	assert.Equal(t, "ab c d", StripControlChars("a\x00b c\x1f d"))
	assert.Equal(t, "a b", StripControlChars("a\tb"))
	assert.Equal(t, "héllo", StripControlChars("h\u0085éllo"))
}

func TestExtractObject(t *testing.T) {
	obj, ok := ExtractObject(`noise {"a":{"b":1}} trailing`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, obj)

	_, ok = ExtractObject("no braces here")
	assert.False(t, ok)
}

func TestNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantSet bool
	}{
		{`7`, 7, true},
		{`7.5`, 7.5, true},
		{`"8"`, 8, true},
		{`" 6.5 "`, 6.5, true},
		{`"9/10"`, 9, true},
		{`null`, 0, false},
		{`"high"`, 0, false},
		{`true`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.input), &n))
			assert.Equal(t, tt.wantSet, n.Set)
			assert.InDelta(t, tt.want, n.Value, 1e-9)
		})
	}
}

func TestNumber_InStruct(t *testing.T) {
	var scores struct {
		F Number `json:"f"`
		Q Number `json:"q"`
		G Number `json:"g"`
	}
	require.NoError(t, DecodeJSON(`{"f":"7","q":9}`, &scores))
	assert.InDelta(t, 7.0, scores.F.Or(5), 1e-9)
	assert.InDelta(t, 9.0, scores.Q.Or(5), 1e-9)
	assert.InDelta(t, 5.0, scores.G.Or(5), 1e-9)

	out, err := json.Marshal(scores)
	require.NoError(t, err)
	assert.JSONEq(t, `{"f":7,"q":9,"g":null}`, string(out))
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "8.5", Number{Value: 8.5, Set: true}.String())
	assert.Equal(t, "7", Number{Value: 7, Set: true}.String())
	assert.Equal(t, "N/A", Number{}.String())
}
