// Package prompt turns free-form model replies into typed values.
package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrDecode is returned when no decoding strategy yields valid JSON.
var ErrDecode = errors.New("model output is not valid JSON")

// DecodeJSON parses model output into v, tolerating code fences, leading or
// trailing prose and stray control characters.
func DecodeJSON(text string, v any) error {
	cleaned := Clean(text)
	if cleaned == "" {
		return fmt.Errorf("%w: empty response", ErrDecode)
	}

	directErr := json.Unmarshal([]byte(cleaned), v)
	if directErr == nil {
		return nil
	}

	if obj, ok := ExtractObject(cleaned); ok && obj != cleaned {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("%w: %v", ErrDecode, directErr)
}

// Clean applies the textual normalisation steps of DecodeJSON without parsing.
func Clean(text string) string {
	s := strings.TrimSpace(text)
	s = StripCodeFence(s)
	s = StripControlChars(s)
	return strings.TrimSpace(s)
}

// StripCodeFence removes one enclosing markdown fence, with or without a language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	body := strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		tag := strings.TrimSpace(body[:nl])
		if tag == "" || isFenceTag(tag) {
			body = body[nl+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
	}

	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

func isFenceTag(tag string) bool {
	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// StripControlChars drops C0 and C1 control characters. Tabs and line breaks
// become a single space so adjacent words stay separated.
func StripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// ExtractObject returns the substring spanning the first '{' to the last '}'.
func ExtractObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
