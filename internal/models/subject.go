package models

import (
	"fmt"
	"strings"
)

// Template placeholders every subject answer template must contain.
const (
	TemplateContextPlaceholder  = "{context}"
	TemplateQuestionPlaceholder = "{question}"
)

// Subject is one topical domain: a namespace with its own corpus, persisted
// index, and answer template. Subjects form a closed catalog loaded once at
// startup and immutable afterwards.
type Subject struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`

	// Template is the answer prompt filled with retrieved context and the
	// user question. It must contain both {context} and {question}.
	Template string `yaml:"template" json:"template" validate:"required"`
}

// Validate checks the parts the validator struct tags cannot express.
func (s *Subject) Validate() error {
	if !strings.Contains(s.Template, TemplateContextPlaceholder) {
		return fmt.Errorf("subject %q template missing %s placeholder", s.Name, TemplateContextPlaceholder)
	}
	if !strings.Contains(s.Template, TemplateQuestionPlaceholder) {
		return fmt.Errorf("subject %q template missing %s placeholder", s.Name, TemplateQuestionPlaceholder)
	}
	return nil
}

// FillTemplate substitutes the context and question into the subject template.
func (s *Subject) FillTemplate(context, question string) string {
	out := strings.ReplaceAll(s.Template, TemplateContextPlaceholder, context)
	return strings.ReplaceAll(out, TemplateQuestionPlaceholder, question)
}
