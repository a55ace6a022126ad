package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
