package cascade

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	LightType     string        `env:"LIGHT_TYPE" envDefault:"CONSOLE"`
	LightPins     []string      `env:"LIGHT_PINS" envSeparator:"," envDefault:"GPIO13,GPIO12,GPIO11,GPIO10,GPIO9,GPIO8,GPIO7,GPIO6"`
	ActiveLow     bool          `env:"LIGHT_ACTIVE_LOW" envDefault:"false"`
	RingSize      int           `env:"RING_SIZE" envDefault:"8"`
	LifxLabels    []string      `env:"LIFX_LABELS" envSeparator:","`
	Remote        string        `env:"REMOTE" envDefault:"MAGIC"`
	KeymapFile    string        `env:"KEYMAP_FILE"`
	IRDevice      string        `env:"IR_DEVICE"`
	IRBaud        int           `env:"IR_BAUD" envDefault:"115200"`
	SerialDevice  string        `env:"SERIAL_DEVICE"`
	SerialBaud    int           `env:"SERIAL_BAUD" envDefault:"115200"`
	StorageFile   string        `env:"STORAGE_FILE" envDefault:"light-cascade.eeprom"`
	StorageOffset int           `env:"STORAGE_OFFSET" envDefault:"0"`
	PersistIdle   time.Duration `env:"PERSIST_IDLE" envDefault:"5s"`
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"1ms"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Validate checks the combinations env parsing cannot.
func (c Config) Validate() error {
	switch strings.ToUpper(c.LightType) {
	case "GPIO":
		if len(c.LightPins) == 0 {
			return fmt.Errorf("LIGHT_TYPE=GPIO needs LIGHT_PINS")
		}
	case "LIFX":
		if len(c.LifxLabels) == 0 {
			return fmt.Errorf("LIGHT_TYPE=LIFX needs LIFX_LABELS")
		}
	case "CONSOLE":
		if c.RingSize < 1 {
			return fmt.Errorf("RING_SIZE must be at least 1, got %d", c.RingSize)
		}
	default:
		return fmt.Errorf("unknown light type: %v", c.LightType)
	}
	if c.StorageOffset < 0 {
		return fmt.Errorf("STORAGE_OFFSET must not be negative")
	}
	if c.PersistIdle < 0 || c.PersistIdle.Milliseconds() > int64(^uint32(0)) {
		return fmt.Errorf("PERSIST_IDLE out of range: %v", c.PersistIdle)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	return nil
}

// RingLength is the number of positions the configured light type drives.
func (c Config) RingLength() int {
	switch strings.ToUpper(c.LightType) {
	case "GPIO":
		return len(c.LightPins)
	case "LIFX":
		return len(c.LifxLabels)
	default:
		return c.RingSize
	}
}
