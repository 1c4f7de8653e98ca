package service

import (
	"errors"
	"fmt"
	"strings"

	"docvault/internal/apperr"
	"docvault/internal/repository"
	"docvault/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseID converts a hex id from a request, naming the field in the error
func parseID(hex, field string) (primitive.ObjectID, error) {
	id, err := util.ParseObjectID(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("invalid %s", field)
	}
	return id, nil
}

// parseOptionalID returns nil for an empty string
func parseOptionalID(hex, field string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(hex) == "" {
		return nil, nil
	}
	id, err := parseID(hex, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// storeErr maps repository sentinels onto apperr kinds and wraps everything else
func storeErr(err error, action, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("%s not found", what)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("%s already exists", what)
	}
	return fmt.Errorf("failed to %s %s: %w", action, what, err)
}

func checkLength(value, field string, max int) error {
	if len(value) > max {
		return apperr.Validation("%s must be at most %d characters", field, max)
	}
	return nil
}

func required(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.Validation("%s is required", field)
	}
	return value, nil
}
