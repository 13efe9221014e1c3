package keys

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ReleaseCode is what NEC decoders report for every repeat frame while a key
// is held and when it is let go.
const ReleaseCode uint32 = 0xFFFFFFFF

// Keys of the 24-key "magic lighting" remote that drive the chase.
const (
	MagicPlus   uint32 = 0x00FFA05F
	MagicMinus  uint32 = 0x00FF20DF
	MagicFlash  uint32 = 0x00FFF00F
	MagicStrobe uint32 = 0x00FFE817
	MagicFade   uint32 = 0x00FFD827
	MagicSmooth uint32 = 0x00FFC837
)

// Arrow keys of the common 21-key NEC remote.
const (
	DirUp    uint32 = 0x00FF629D
	DirDown  uint32 = 0x00FFA857
	DirLeft  uint32 = 0x00FF22DD
	DirRight uint32 = 0x00FFC23D
)

var ErrUnknownRemote = errors.New("unknown remote")

// Keymap binds raw codes to commands, separately per source.
type Keymap struct {
	Name   string
	IR     map[uint32]Op
	Serial map[byte]Op
}

func (k Keymap) Lookup(src Source, code uint32) (Op, bool) {
	switch src {
	case SourceIR:
		op, ok := k.IR[code]
		return op, ok
	case SourceSerial:
		if code > 0xFF {
			return OpNone, false
		}
		op, ok := k.Serial[byte(code)]
		return op, ok
	}
	return OpNone, false
}

func SerialShortcuts() map[byte]Op {
	return map[byte]Op{
		'q': OpIncreaseOnTime,
		'a': OpDecreaseOnTime,
		'w': OpIncreaseSpacing,
		's': OpDecreaseSpacing,
	}
}

func MagicRemote() Keymap {
	return Keymap{
		Name: "magic",
		IR: map[uint32]Op{
			MagicPlus:   OpIncreaseOnTime,
			MagicFlash:  OpIncreaseOnTime,
			MagicMinus:  OpDecreaseOnTime,
			MagicStrobe: OpDecreaseOnTime,
			MagicFade:   OpIncreaseSpacing,
			MagicSmooth: OpDecreaseSpacing,
		},
		Serial: SerialShortcuts(),
	}
}

func DirectionalRemote() Keymap {
	return Keymap{
		Name: "directional",
		IR: map[uint32]Op{
			DirUp:    OpIncreaseOnTime,
			DirDown:  OpDecreaseOnTime,
			DirRight: OpIncreaseSpacing,
			DirLeft:  OpDecreaseSpacing,
		},
		Serial: SerialShortcuts(),
	}
}

// ByName returns a built-in keymap. The two remotes reuse each other's codes
// for different keys, so only one can be active.
func ByName(name string) (Keymap, error) {
	switch strings.ToUpper(name) {
	case "MAGIC":
		return MagicRemote(), nil
	case "DIRECTIONAL":
		return DirectionalRemote(), nil
	default:
		return Keymap{}, fmt.Errorf("%w: %s", ErrUnknownRemote, name)
	}
}

type keymapFile struct {
	Name   string            `yaml:"name"`
	IR     map[string]string `yaml:"ir"`
	Serial map[string]string `yaml:"serial"`
}

// LoadFile reads a keymap from YAML. IR codes are written as quoted numbers
// in any base strconv understands, serial keys as single characters:
//
//	name: living-room
//	ir:
//	  "0x00FF629D": increase_on_time
//	serial:
//	  "+": increase_spacing
func LoadFile(path string) (Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keymap{}, err
	}
	return ParseKeymap(data)
}

func ParseKeymap(data []byte) (Keymap, error) {
	var f keymapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Keymap{}, fmt.Errorf("parse keymap: %w", err)
	}

	k := Keymap{
		Name:   f.Name,
		IR:     make(map[uint32]Op, len(f.IR)),
		Serial: make(map[byte]Op, len(f.Serial)),
	}
	if k.Name == "" {
		k.Name = "custom"
	}
	for code, name := range f.IR {
		c, err := strconv.ParseUint(code, 0, 32)
		if err != nil {
			return Keymap{}, fmt.Errorf("ir code %q: %w", code, err)
		}
		if uint32(c) == ReleaseCode {
			return Keymap{}, fmt.Errorf("ir code %q is the release code", code)
		}
		op, err := ParseOp(name)
		if err != nil {
			return Keymap{}, fmt.Errorf("ir code %q: %w", code, err)
		}
		k.IR[uint32(c)] = op
	}
	for key, name := range f.Serial {
		if len(key) != 1 {
			return Keymap{}, fmt.Errorf("serial key %q must be one byte", key)
		}
		op, err := ParseOp(name)
		if err != nil {
			return Keymap{}, fmt.Errorf("serial key %q: %w", key, err)
		}
		k.Serial[key[0]] = op
	}
	if len(k.Serial) == 0 {
		k.Serial = SerialShortcuts()
	}
	return k, nil
}
