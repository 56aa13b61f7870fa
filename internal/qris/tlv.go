package qris

import (
	"fmt"
	"strconv"
)

// Field is one top-level tag-length-value unit of a QRIS payload.
type Field struct {
	Tag   string
	Value string
}

// Parse splits payload into its top-level TLV fields in order.
func Parse(payload string) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(payload); {
		if i+4 > len(payload) {
			return nil, fmt.Errorf("%w: truncated field header at offset %d", ErrFormat, i)
		}
		tag := payload[i : i+2]
		n, err := strconv.Atoi(payload[i+2 : i+4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid length for tag %s at offset %d", ErrFormat, tag, i)
		}
		start := i + 4
		if start+n > len(payload) {
			return nil, fmt.Errorf("%w: tag %s overruns payload", ErrFormat, tag)
		}
		fields = append(fields, Field{Tag: tag, Value: payload[start : start+n]})
		i = start + n
	}
	return fields, nil
}

// Lookup returns the value of the first field with the given tag.
func Lookup(fields []Field, tag string) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// Amount extracts the transaction amount (tag 54) from a dynamic payload.
func Amount(payload string) (string, bool, error) {
	fields, err := Parse(payload)
	if err != nil {
		return "", false, err
	}
	v, ok := Lookup(fields, tagAmount)
	return v, ok, nil
}
