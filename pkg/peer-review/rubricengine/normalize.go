package rubricengine

import (
	"sort"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

// Normalize flattens the headings, text blocks and prompts of a rubric into one
// render list sorted by order. Elements sharing an order keep the sequence
// headings, text blocks, prompts, each in definition order.
func Normalize(rubric types.Rubric) []Element {
	elements := make([]Element, 0, len(rubric.Headings)+len(rubric.TextBlocks)+len(rubric.Prompts))

	for i := range rubric.Headings {
		h := rubric.Headings[i]
		elements = append(elements, Element{Kind: ELEMENT_KIND_HEADING, Heading: &h})
	}
	for i := range rubric.TextBlocks {
		tb := rubric.TextBlocks[i]
		elements = append(elements, Element{Kind: ELEMENT_KIND_TEXT_BLOCK, TextBlock: &tb})
	}
	for i := range rubric.Prompts {
		elements = append(elements, Element{Kind: ELEMENT_KIND_PROMPT, Prompt: newPromptState(rubric.Prompts[i])})
	}

	sort.SliceStable(elements, func(i, j int) bool {
		return elements[i].Order().Value() < elements[j].Order().Value()
	})
	return elements
}

// newPromptState starts a prompt unanswered: no likert point, empty text, unchecked.
func newPromptState(p types.RubricPrompt) *PromptState {
	if p.PromptOptions != nil {
		p.PromptOptions = append([]types.PromptOption(nil), p.PromptOptions...)
	}
	return &PromptState{
		RubricPrompt: p,
		Likert:       nil,
		Text:         "",
		Checked:      false,
		Error:        false,
	}
}
