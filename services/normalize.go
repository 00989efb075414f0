package services

import (
	"encoding/json"
	"fmt"

	"github.com/prepforge/prepforge_backend/models"
)

// NormalizeOptions canonicalizes incoming answer options before anything
// downstream touches them. Clients send options either as plain strings or as
// {id, text} objects; after this step there is exactly one shape.
//
// A bare string serves as both id and text, so answer maps that reference the
// string keep resolving. An object without an id gets a positional one.
func NormalizeOptions(raw []json.RawMessage) ([]models.Option, error) {
	options := make([]models.Option, 0, len(raw))
	for i, r := range raw {
		opt, err := normalizeOption(r, i)
		if err != nil {
			return nil, fmt.Errorf("option %d: %w", i, err)
		}
		options = append(options, opt)
	}
	return options, nil
}

func normalizeOption(raw json.RawMessage, idx int) (models.Option, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return models.Option{ID: text, Text: text}, nil
	}

	var obj models.Option
	if err := json.Unmarshal(raw, &obj); err != nil {
		return models.Option{}, fmt.Errorf("option is neither a string nor an object: %w", err)
	}
	if obj.ID == "" {
		obj.ID = fmt.Sprintf("opt-%d", idx)
	}
	return obj, nil
}
