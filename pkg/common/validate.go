package common

import (
	"strings"
	"sync"

	"github.com/go-playground/validator"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Normalize trims names and fills in the defaults for optional enum fields.
// It must run before Validate.
func (o *ExtractionOutput) Normalize() {
	for i := range o.Aggregates {
		o.Aggregates[i].Name = strings.TrimSpace(o.Aggregates[i].Name)
	}
	for i := range o.Commands {
		o.Commands[i].Name = strings.TrimSpace(o.Commands[i].Name)
		if o.Commands[i].Intent == "" {
			o.Commands[i].Intent = IntentCustom
		}
		if o.Commands[i].Preconditions == nil {
			o.Commands[i].Preconditions = []string{}
		}
	}
	for i := range o.Events {
		o.Events[i].Name = strings.TrimSpace(o.Events[i].Name)
		if o.Events[i].SchemaHint == nil {
			o.Events[i].SchemaHint = map[string]string{}
		}
	}
	for i := range o.Policies {
		o.Policies[i].Name = strings.TrimSpace(o.Policies[i].Name)
		if o.Policies[i].Type == "" {
			o.Policies[i].Type = PolicyProcess
		}
	}
}

// Validate checks all candidates. Confidences outside [0,1] are rejected
// rather than clamped.
func (o *ExtractionOutput) Validate() error {
	return Validator().Struct(o)
}
