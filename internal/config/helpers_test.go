package config

import (
	"strings"

	"gopkg.in/yaml.v3"
)

func decodeYAML(in string, out any) error {
	return yaml.NewDecoder(strings.NewReader(in)).Decode(out)
}
