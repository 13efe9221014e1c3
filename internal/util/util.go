package util

import (
	"fmt"
	"os"
)

func Getenv[T StringParsable](key string, def T) T {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return ParseStringAs(v, def)
}

// FormatCode prints a raw key code the way keymap files spell IR codes.
func FormatCode(code uint32) string {
	return fmt.Sprintf("0x%08X", code)
}
