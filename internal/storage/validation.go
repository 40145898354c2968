// Package storage provides the data persistence layer for the tend application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrEmptySlice   = errors.New("slice cannot be empty")
	ErrEmptyPatch   = errors.New("patch has no fields set")
	ErrInvalidItem  = errors.New("invalid item")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateIDs ensures an id slice is non-nil, non-empty, and free of blanks.
func validateIDs(ids []string) error {
	if ids == nil {
		return fmt.Errorf("%w: ids", ErrNilParameter)
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: ids", ErrEmptySlice)
	}
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: ids[%d]", ErrEmptyString, i)
		}
	}
	return nil
}

// validateItem validates a single item before persistence.
func validateItem(item *model.Item) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}

// validatePatch ensures a patch mutates at least one field.
func validatePatch(patch service.ItemPatch) error {
	if patch == (service.ItemPatch{}) {
		return ErrEmptyPatch
	}
	return nil
}
