package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} placeholders. The braces are required; a bare
// $ stays literal so API keys containing one survive untouched.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvNode replaces ${VAR} placeholders in every scalar value of the
// tree. A placeholder naming an unset variable fails the whole expansion.
func expandEnvNode(node *yaml.Node) error {
	if node == nil {
		return nil
	}

	if node.Kind == yaml.ScalarNode {
		expanded, err := expandEnvString(node.Value, fmt.Sprintf("line %d", node.Line))
		if err != nil {
			return err
		}
		node.Value = expanded
		return nil
	}

	for _, child := range node.Content {
		if err := expandEnvNode(child); err != nil {
			return err
		}
	}
	return nil
}

func expandEnvString(value, context string) (string, error) {
	var missing *UserError

	expanded := envPattern.ReplaceAllStringFunc(value, func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		val, ok := os.LookupEnv(name)
		if !ok {
			if missing == nil {
				missing = NewEnvNotSetError(name, context)
			}
			return match
		}
		return val
	})

	if missing != nil {
		return "", missing
	}
	return expanded, nil
}
