package rubricengine

import (
	"encoding/json"
	"errors"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

var (
	ErrElementNotFound      = errors.New("no prompt element with that order")
	ErrInvalidValue         = errors.New("invalid prompt value")
	ErrUnknownPromptType    = errors.New("unknown prompt type")
	ErrUnknownElementKind   = errors.New("unknown element kind")
	ErrResponseTypeMismatch = errors.New("response type does not match prompt type")
	ErrInvalidTransition    = errors.New("invalid session state transition")
)

type ElementKind string

const (
	ELEMENT_KIND_HEADING    ElementKind = "heading"
	ELEMENT_KIND_TEXT_BLOCK ElementKind = "textBlock"
	ELEMENT_KIND_PROMPT     ElementKind = "prompt"
)

// Element is one entry of the render list. Exactly one of Heading, TextBlock
// or Prompt is set, matching Kind.
type Element struct {
	Kind      ElementKind
	Heading   *types.RubricHeading
	TextBlock *types.RubricTextBlock
	Prompt    *PromptState
}

// PromptState is a rubric prompt together with the reviewer's current answer.
// Text holds the answer of text and dropdown prompts.
type PromptState struct {
	types.RubricPrompt
	Likert  *int
	Text    string
	Checked bool
	Error   bool
}

func (e Element) Order() types.Order {
	switch e.Kind {
	case ELEMENT_KIND_HEADING:
		if e.Heading != nil {
			return e.Heading.Order
		}
	case ELEMENT_KIND_TEXT_BLOCK:
		if e.TextBlock != nil {
			return e.TextBlock.Order
		}
	case ELEMENT_KIND_PROMPT:
		if e.Prompt != nil {
			return e.Prompt.Order
		}
	}
	return types.Order{}
}

func (e Element) IsPrompt() bool {
	return e.Kind == ELEMENT_KIND_PROMPT && e.Prompt != nil
}

func (e Element) clone() Element {
	c := Element{Kind: e.Kind}
	if e.Heading != nil {
		h := *e.Heading
		c.Heading = &h
	}
	if e.TextBlock != nil {
		tb := *e.TextBlock
		c.TextBlock = &tb
	}
	if e.Prompt != nil {
		p := *e.Prompt
		if e.Prompt.Likert != nil {
			v := *e.Prompt.Likert
			p.Likert = &v
		}
		if e.Prompt.PromptOptions != nil {
			p.PromptOptions = append([]types.PromptOption(nil), e.Prompt.PromptOptions...)
		}
		c.Prompt = &p
	}
	return c
}

func cloneElements(elements []Element) []Element {
	out := make([]Element, len(elements))
	for i, e := range elements {
		out[i] = e.clone()
	}
	return out
}

// Value returns the answer in the shape the form uses for the prompt type:
// *int for likert, string for text and dropdown, bool for checkbox.
func (p *PromptState) Value() interface{} {
	switch {
	case p.PromptType.IsLikert():
		if p.Likert == nil {
			return nil
		}
		return *p.Likert
	case p.PromptType == types.PROMPT_TYPE_CHECKBOX:
		return p.Checked
	default:
		return p.Text
	}
}

// MarshalJSON flattens the element into the shape form renderers expect:
// the definition item's fields plus uiType, and for prompts value and error.
func (e Element) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case ELEMENT_KIND_HEADING:
		return json.Marshal(struct {
			UIType ElementKind `json:"uiType"`
			*types.RubricHeading
		}{e.Kind, e.Heading})
	case ELEMENT_KIND_TEXT_BLOCK:
		return json.Marshal(struct {
			UIType ElementKind `json:"uiType"`
			*types.RubricTextBlock
		}{e.Kind, e.TextBlock})
	case ELEMENT_KIND_PROMPT:
		if e.Prompt == nil {
			return nil, ErrUnknownElementKind
		}
		return json.Marshal(struct {
			UIType ElementKind `json:"uiType"`
			types.RubricPrompt
			Value interface{} `json:"value"`
			Error bool        `json:"error"`
		}{e.Kind, e.Prompt.RubricPrompt, e.Prompt.Value(), e.Prompt.Error})
	default:
		return nil, ErrUnknownElementKind
	}
}
