package graph

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/stormgraph/internal/util"
	"github.com/OFFIS-RIT/stormgraph/pkg/ai"
	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

type extractSpan struct {
	SpanStart  int     `json:"span_start" jsonschema_description:"Character offset inside the fragment where the supporting text starts"`
	SpanEnd    int     `json:"span_end" jsonschema_description:"Character offset inside the fragment where the supporting text ends"`
	Confidence float64 `json:"confidence" jsonschema_description:"Certainty between 0.0 and 1.0"`
}

type extractAggregate struct {
	Name        string `json:"name" jsonschema_description:"Singular noun in PascalCase, e.g. Order"`
	Description string `json:"description" jsonschema_description:"Short description of the aggregate"`
	extractSpan
}

type extractCommand struct {
	Name          string   `json:"name" jsonschema_description:"Imperative verb phrase in PascalCase, e.g. CreateOrder"`
	Intent        string   `json:"intent" jsonschema:"enum=Create,enum=Update,enum=Delete,enum=Query,enum=Custom"`
	Preconditions []string `json:"preconditions" jsonschema_description:"Conditions that must hold before the command runs"`
	extractSpan
}

type extractSchemaField struct {
	Field string `json:"field"`
	Type  string `json:"type" jsonschema_description:"Simple type name such as string, number, boolean, date or id"`
}

type extractEvent struct {
	Name       string               `json:"name" jsonschema_description:"Past tense in PascalCase, e.g. OrderCreated"`
	SchemaHint []extractSchemaField `json:"schema_hint" jsonschema_description:"Fields the event most likely carries"`
	extractSpan
}

type extractPolicy struct {
	Name      string `json:"name" jsonschema_description:"Descriptive name, e.g. ShipOrderWhenPaymentCompleted"`
	Type      string `json:"type" jsonschema:"enum=ProcessPolicy,enum=SagaPolicy,enum=Rule"`
	Condition string `json:"condition" jsonschema_description:"Trigger and reaction using concept names, e.g. When PaymentProcessed then ShipOrder"`
	extractSpan
}

type extractResponse struct {
	Aggregates []extractAggregate `json:"aggregates"`
	Commands   []extractCommand   `json:"commands"`
	Events     []extractEvent     `json:"events"`
	Policies   []extractPolicy    `json:"policies"`
}

// anchor maps a span relative to the fragment onto the page, clamped to the
// fragment bounds.
func (s extractSpan) anchor(fragment common.Fragment) common.SourceAnchor {
	clamp := func(v int) int {
		v += fragment.Start
		if v < fragment.Start {
			return fragment.Start
		}
		if v > fragment.End {
			return fragment.End
		}
		return v
	}
	start, end := clamp(s.SpanStart), clamp(s.SpanEnd)
	if end < start {
		end = start
	}
	return common.SourceAnchor{
		DocID:      fragment.DocID,
		Page:       fragment.Page,
		Span:       [2]int{start, end},
		FragmentID: fragment.ID,
	}
}

func (r extractResponse) toOutput(fragment common.Fragment) common.ExtractionOutput {
	var out common.ExtractionOutput
	for _, a := range r.Aggregates {
		out.Aggregates = append(out.Aggregates, common.Aggregate{
			Name:        a.Name,
			Description: a.Description,
			Confidence:  a.Confidence,
			Source:      a.anchor(fragment),
		})
	}
	for _, c := range r.Commands {
		out.Commands = append(out.Commands, common.Command{
			Name:          c.Name,
			Intent:        common.CommandIntent(c.Intent),
			Preconditions: c.Preconditions,
			Confidence:    c.Confidence,
			Source:        c.anchor(fragment),
		})
	}
	for _, e := range r.Events {
		hint := make(map[string]string, len(e.SchemaHint))
		for _, f := range e.SchemaHint {
			if f.Field != "" {
				hint[f.Field] = f.Type
			}
		}
		out.Events = append(out.Events, common.Event{
			Name:       e.Name,
			SchemaHint: hint,
			Confidence: e.Confidence,
			Source:     e.anchor(fragment),
		})
	}
	for _, p := range r.Policies {
		out.Policies = append(out.Policies, common.Policy{
			Name:       p.Name,
			Type:       common.PolicyType(p.Type),
			Condition:  p.Condition,
			Confidence: p.Confidence,
			Source:     p.anchor(fragment),
		})
	}
	return out
}

// extractFromFragment asks the oracle for the concepts of one fragment. A
// response that fails validation is an error for the whole fragment.
func extractFromFragment(
	ctx context.Context,
	client ai.GraphAIClient,
	fragment common.Fragment,
	maxRetries int,
) (common.ExtractionOutput, error) {
	systemPrompt := fmt.Sprintf(ai.ExtractConceptsPrompt, fragment.DocID, fragment.Page)
	prompt := fmt.Sprintf(ai.ExtractConceptsUserPrompt, fragment.Text)

	return util.RetryWithContext(ctx, maxRetries, 0, func(ctx context.Context) (common.ExtractionOutput, error) {
		var res extractResponse
		err := client.GenerateCompletionWithFormat(
			ctx,
			"extract_domain_concepts",
			"Extract event storming concepts from a document fragment.",
			prompt,
			&res,
			ai.WithSystemPrompts(systemPrompt),
		)
		if err != nil {
			return common.ExtractionOutput{}, err
		}

		out := res.toOutput(fragment)
		out.Normalize()
		if err := out.Validate(); err != nil {
			return common.ExtractionOutput{}, fmt.Errorf("invalid extraction for fragment %s: %w", fragment.ID, err)
		}
		return out, nil
	})
}
