package settings

import (
	"bytes"
	"fmt"

	"github.com/lunixbochs/struc"
)

// Magic marks an initialised record: "LC" followed by the format version.
const Magic uint32 = 0x4C430001

// RecordSize is the byte length of an encoded record.
const RecordSize = 12

type record struct {
	Magic        uint32 `struc:"uint32,little"`
	OnDurationMs uint32 `struc:"uint32,little"`
	SpacingMs    int32  `struc:"int32,little"`
}

// ErrBadMagic is returned by Decode when the blob was never written by us or
// was written by an incompatible version.
type ErrBadMagic struct {
	Got uint32
}

func (e ErrBadMagic) Error() string {
	return fmt.Sprintf("settings record magic %#08x, want %#08x", e.Got, Magic)
}

func Encode(s Settings) ([]byte, error) {
	var buf bytes.Buffer
	rec := record{Magic: Magic, OnDurationMs: s.OnDurationMs, SpacingMs: s.SpacingMs}
	if err := struc.Pack(&buf, &rec); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

func Decode(b []byte) (Settings, error) {
	if len(b) < RecordSize {
		return Settings{}, fmt.Errorf("settings record is %d bytes, want %d", len(b), RecordSize)
	}
	var rec record
	if err := struc.Unpack(bytes.NewReader(b[:RecordSize]), &rec); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if rec.Magic != Magic {
		return Settings{}, ErrBadMagic{Got: rec.Magic}
	}
	return Settings{OnDurationMs: rec.OnDurationMs, SpacingMs: rec.SpacingMs}, nil
}
