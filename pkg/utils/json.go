package utils

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// DecodePayload converts a loosely decoded JSON value (typically the map[string]any
// produced for an interface field) into T. Values that already are a T pass through.
func DecodePayload[T any](payload any) (T, error) {
	if v, ok := payload.(T); ok {
		return v, nil
	}
	var result T
	if payload == nil {
		return result, errors.New("empty payload")
	}
	data, err := jsoniter.Marshal(payload)
	if err != nil {
		return result, errors.WithMessage(err, "marshal json")
	}
	if err := jsoniter.Unmarshal(data, &result); err != nil {
		return result, errors.WithMessage(err, "unmarshal json")
	}
	return result, nil
}
