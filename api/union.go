package api

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	updateTypeKey = "update_type"
	typeKey       = "type"
)

// marshalTagged encodes value as a JSON object and injects the discriminator
// key as its first field.
func marshalTagged(key, kind string, value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) < 2 || data[0] != '{' {
		return nil, errors.Errorf("tagged value %s is not an object", kind)
	}

	buf := new(bytes.Buffer)
	buf.WriteString(`{"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	buf.Write(tag)
	if rest := data[1:]; !bytes.Equal(bytes.TrimSpace(rest), []byte("}")) {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}

	return buf.Bytes(), nil
}

func peekKind(data []byte, key string) (string, error) {
	var head map[string]json.RawMessage
	if err := json.Unmarshal(data, &head); err != nil {
		return "", err
	}

	raw, ok := head[key]
	if !ok {
		return "", errors.Errorf("missing %s", key)
	}

	var kind string
	if err := json.Unmarshal(raw, &kind); err != nil {
		return "", errors.Wrapf(err, "decode %s", key)
	}

	return kind, nil
}

type variants[T any] struct {
	key     string
	known   map[string]func() T
	unknown func(kind string, raw json.RawMessage) T
}

func (v variants[T]) decode(data []byte) (T, error) {
	var zero T
	kind, err := v.peek(data)
	if err != nil {
		return zero, err
	}

	factory, ok := v.known[kind]
	if !ok {
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return v.unknown(kind, raw), nil
	}

	value := factory()
	if err := json.Unmarshal(data, value); err != nil {
		return zero, errors.Wrapf(err, "decode %s", kind)
	}

	return value, nil
}

func (v variants[T]) peek(data []byte) (string, error) {
	return peekKind(data, v.key)
}

func (v variants[T]) decodeSlice(data []byte) ([]T, error) {
	if isNull(data) {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	values := make([]T, len(raws))
	for i, raw := range raws {
		value, err := v.decode(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}

		values[i] = value
	}

	return values, nil
}

func (v variants[T]) decodeRows(data []byte) ([][]T, error) {
	if isNull(data) {
		return nil, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	rows := make([][]T, len(raws))
	for i, raw := range raws {
		row, err := v.decodeSlice(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}

		rows[i] = row
	}

	return rows, nil
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || bytes.Equal(data, []byte("null"))
}
