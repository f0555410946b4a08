package config

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Collect merges YAML documents and environment variables with the prefix into a single YAML document.
// Later documents override earlier ones, environment variables override all documents.
// Environment variable names are split by underscores into nested keys which are matched
// case-insensitively against the keys already present.
func Collect(environPrefix string, documents ...[]byte) ([]byte, error) {
	global := make(map[string]interface{})
	for i, data := range documents {
		config := make(map[string]interface{})
		data = []byte(os.ExpandEnv(string(data)))
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrapf(err, "decode config #%d", i+1)
		}

		var err error
		if global, err = merge(global, config); err != nil {
			return nil, errors.Wrapf(err, "merge config #%d", i+1)
		}
	}

	env, err := environ(environPrefix, global, os.Environ())
	if err != nil {
		return nil, errors.Wrap(err, "read environment")
	}

	if global, err = merge(global, env); err != nil {
		return nil, errors.Wrap(err, "merge environment")
	}

	buf := new(bytes.Buffer)
	encoder := yaml.NewEncoder(buf)
	if err := encoder.Encode(global); err != nil {
		return nil, errors.Wrap(err, "encode global config")
	}

	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(err, "encode global config")
	}

	return buf.Bytes(), nil
}

func environ(prefix string, known map[string]interface{}, lines []string) (map[string]interface{}, error) {
	m := make(map[string]interface{})
	for _, line := range lines {
		if !strings.HasPrefix(line, prefix) {
			continue
		}

		line = line[len(prefix):]
		equals := strings.Index(line, "=")
		if equals < 0 {
			continue
		}

		key, value := line[:equals], line[equals+1:]
		tokens := strings.Split(key, "_")
		entry, reference := m, known
		for i, token := range tokens {
			if token == "" {
				break
			}

			token = resolve(reference, token)
			var hint interface{}
			if reference != nil {
				hint = reference[token]
			}

			if i == len(tokens)-1 {
				if _, ok := entry[token].(map[string]interface{}); ok {
					return nil, errors.Errorf("%s%s is an object", prefix, key)
				}

				entry[token] = parse(value, hint)
				break
			}

			child, ok := entry[token].(map[string]interface{})
			if !ok {
				if _, exists := entry[token]; exists {
					return nil, errors.Errorf("%s%s conflicts with a value", prefix, key)
				}

				child = make(map[string]interface{})
				entry[token] = child
			}

			entry = child
			reference, _ = hint.(map[string]interface{})
		}
	}

	return m, nil
}

// resolve finds the key matching the token case-insensitively.
func resolve(known map[string]interface{}, token string) string {
	for key := range known {
		if strings.EqualFold(key, token) {
			return key
		}
	}

	return strings.ToLower(token)
}

func parse(value string, hint interface{}) interface{} {
	switch hint.(type) {
	case string:
		return value
	case []interface{}:
		if value == "" {
			return []interface{}{}
		}

		items := strings.Split(value, ",")
		values := make([]interface{}, len(items))
		for i, item := range items {
			values[i] = parse(strings.TrimSpace(item), "")
		}

		return values
	}

	if v, err := strconv.ParseInt(value, 10, 64); err == nil {
		return v
	} else if v, err := strconv.ParseFloat(value, 64); err == nil {
		return v
	} else if v, err := strconv.ParseBool(value); err == nil {
		return v
	}

	return value
}

func merge(a, b map[string]interface{}) (map[string]interface{}, error) {
	for k, v := range b {
		av, ok := a[k]
		if !ok || av == nil || v == nil {
			a[k] = v
			continue
		}

		mav, aIsMap := av.(map[string]interface{})
		mv, bIsMap := v.(map[string]interface{})
		switch {
		case aIsMap && bIsMap:
			merged, err := merge(mav, mv)
			if err != nil {
				return nil, errors.Wrap(err, k)
			}

			a[k] = merged
		case !aIsMap && !bIsMap:
			a[k] = v
		default:
			return nil, errors.Errorf("configuration key %s must have the same type", k)
		}
	}

	return a, nil
}
