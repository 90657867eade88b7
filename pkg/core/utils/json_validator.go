package utils

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnparseable is returned when no parsing strategy yields a payload that
// decodes into the target.
var ErrUnparseable = errors.New("payload is not valid JSON or Hjson")

// RepairJSON fixes common hand-editing mistakes:
// - Missing quotes around keys
// - Single quotes instead of double quotes
// - Unclosed arrays/objects
// - Trailing commas
// - Comments
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (Hjson) and returns standard JSON.
// Hjson allows comments, unquoted keys and strings, and optional commas.
// Numbers keep their literal text.
func ParseHJSON(data string) (string, error) {
	opts := hjson.DefaultDecoderOptions()
	opts.UseJSONNumber = true

	var result interface{}
	if err := hjson.UnmarshalWithOptions([]byte(data), &result, opts); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("json marshal failed: %w", err)
	}
	return string(out), nil
}

// SmartParse decodes input into target, trying in order:
// 1. Standard JSON
// 2. Hjson
// 3. Repaired JSON (unclosed brackets, stray text)
//
// json-repair re-encodes numbers at float32 precision, so it only runs when
// neither exact parser accepts the input.
//
// It returns the canonical JSON that was decoded.
func SmartParse(input string, target interface{}) (string, error) {
	input = StripCodeFence(input)

	if err := json.Unmarshal([]byte(input), target); err == nil {
		return input, nil
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), target); err == nil {
			return converted, nil
		}
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), target); err == nil {
			return repaired, nil
		}
	}

	return "", ErrUnparseable
}
