package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Seconds is a duration written either as a Go duration string ("3.5s",
// "500ms") or as a plain number of seconds.
type Seconds time.Duration

func (s Seconds) Duration() time.Duration { return time.Duration(s) }

func (s *Seconds) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: duration must be a scalar at line %d", ErrInvalidValue, node.Line)
	}
	d, err := parseSeconds(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = d
	return nil
}

func (s Seconds) MarshalYAML() (any, error) {
	return time.Duration(s).String(), nil
}

func (s *Seconds) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		d, err := parseSeconds(v)
		if err != nil {
			return err
		}
		*s = d
	case float64:
		*s = Seconds(v * float64(time.Second))
	default:
		return fmt.Errorf("%w: duration %s", ErrInvalidValue, data)
	}
	return nil
}

func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(s).String())
}

func parseSeconds(v string) (Seconds, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return Seconds(d), nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: duration %q", ErrInvalidValue, v)
	}
	return Seconds(f * float64(time.Second)), nil
}
