package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values may be strings like "300s"
// or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Count is a record count, unmarshaled from plain integers or compact
// strings like "1k".
type Count int

func (c *Count) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*c = 0
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*c = 0
		return nil
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*c = Count(i)
		return nil
	}
	if v, err := humanize.ParseBytes(raw); err == nil {
		*c = Count(v)
		return nil
	}
	return fmt.Errorf("invalid count value: %q", node.Value)
}

func (c Count) Int() int { return int(c) }
