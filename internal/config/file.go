package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// applyFile exports every key of a flat YAML document into the process
// environment unless the variable is already set.
//
//	port: "9090"
//	backend_url: https://sounds.example.com
func applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for key, value := range values {
		envKey := toEnvKey(key)
		if _, set := os.LookupEnv(envKey); set {
			continue
		}
		if err := os.Setenv(envKey, value); err != nil {
			return fmt.Errorf("apply %s: %w", envKey, err)
		}
	}
	return nil
}

func toEnvKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c == '-' || c == '.':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
