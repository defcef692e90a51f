package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexString accepts JSON strings, numbers, and null. The backend stores
// the birth-date components as free-form text but some endpoints emit
// them as numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}
	return fmt.Errorf("value %s is neither string nor number", trimmed)
}

// FlexStringList accepts a JSON array of strings, a single scalar (wrapped
// into a one-element list), and null (empty list). It marshals as a plain
// array and is never nil after decoding.
type FlexStringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexStringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = []string{}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		if list == nil {
			list = []string{}
		}
		*f = list
		return nil
	}
	var single FlexString
	if err := single.UnmarshalJSON(data); err == nil {
		*f = []string{string(single)}
		return nil
	}
	return fmt.Errorf("value %s is neither string list nor scalar", trimmed)
}

// MarshalJSON implements json.Marshaler, encoding nil as [].
func (f FlexStringList) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

// FlexInt accepts JSON numbers, numeric strings, and null (zero).
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*f = 0
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("string %q is not numeric", s)
		}
		*f = FlexInt(v)
		return nil
	}
	return fmt.Errorf("value %s is neither number nor numeric string", trimmed)
}
