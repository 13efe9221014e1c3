package util

import (
	"strconv"
	"strings"
	"time"
)

// StringParsable lists the types the key probe reads from its environment.
type StringParsable interface {
	string | []string | int | bool | time.Duration
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	v := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			v = append(v, p)
		}
	}
	return v
}

// ParseStringAs parses v as the type of def, returning def when v does not
// parse. Integers accept any base prefix strconv understands, so device
// settings such as "0x1c200" work.
func ParseStringAs[T StringParsable](v string, def T) T {
	v = strings.Trim(v, `"`) // in case something comes in as if it were a json string

	var parsed any
	var err error
	switch any(def).(type) {
	case string:
		parsed = v
	case []string:
		parsed = splitList(v)
	case int:
		var n int64
		n, err = strconv.ParseInt(v, 0, 0)
		parsed = int(n)
	case bool:
		parsed, err = strconv.ParseBool(v)
	case time.Duration:
		parsed, err = time.ParseDuration(v)
	}
	if err != nil {
		return def
	}
	return parsed.(T)
}
