package profile

import (
	"context"
	"fmt"

	"github.com/quarkbyte/finagent/llm"
	"github.com/quarkbyte/finagent/schema"
)

// LLMLocalizer translates the descriptive profile fields into a target
// language through the structured completion client. Product, brand and
// place names must survive untranslated.
type LLMLocalizer struct {
	completer llm.Completer
	language  string
}

func NewLLMLocalizer(completer llm.Completer, language string) *LLMLocalizer {
	return &LLMLocalizer{completer: completer, language: language}
}

type localized struct {
	schema.Base
	Description string `json:"description" jsonschema:"title=description,description=Translated company description." validate:"required"`
	Sector      string `json:"sector,omitempty" jsonschema:"title=sector,description=Translated sector name."`
	Industry    string `json:"industry,omitempty" jsonschema:"title=industry,description=Translated industry name."`
}

func (l *LLMLocalizer) Localize(ctx context.Context, facts *Facts) error {
	if l.language == "" || facts.Description == "" {
		return nil
	}
	messages := []llm.Message{
		{
			Role: llm.SystemRole,
			Content: fmt.Sprintf("Translate company profile fields into %s, keeping the tone and level of detail. "+
				"Keep every product name, brand name, company name and place name exactly as written. "+
				"Translate only the descriptive wording, never proper nouns.", l.language),
		},
		{
			Role:    llm.UserRole,
			Content: fmt.Sprintf("description: %s\nsector: %s\nindustry: %s", facts.Description, facts.Sector, facts.Industry),
		},
	}
	var out localized
	if err := l.completer.CreateStructured(ctx, messages, &out, nil); err != nil {
		return err
	}
	if out.Description != "" {
		facts.Description = out.Description
	}
	if out.Sector != "" {
		facts.Sector = out.Sector
	}
	if out.Industry != "" {
		facts.Industry = out.Industry
	}
	return nil
}
