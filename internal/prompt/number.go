package prompt

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a float that also accepts quoted numerals such as "7.5" or "8/10".
// Unparseable or null values decode to an unset Number.
type Number struct {
	Value float64
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if f, ok := parseNumeral(s); ok {
			*n = Number{Value: f, Set: true}
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	*n = Number{Value: f, Set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when unset.
func (n Number) Or(def float64) float64 {
	if !n.Set {
		return def
	}
	return n.Value
}

func parseNumeral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String formats the value without trailing zeros, or "N/A" when unset.
func (n Number) String() string {
	if !n.Set {
		return "N/A"
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}
