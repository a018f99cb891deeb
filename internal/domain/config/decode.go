package config

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// DecodeStrict decodes a YAML node into out, rejecting unknown fields.
// Plugin managers use it so a typo in an instance configuration fails
// loudly instead of being silently dropped.
func DecodeStrict(node *yaml.Node, out interface{}) error {
	if node == nil {
		return nil
	}

	// Re-encode the subtree so a strict decoder can be applied to it;
	// yaml.Node.Decode has no KnownFields switch.
	data, err := yaml.Marshal(node)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
