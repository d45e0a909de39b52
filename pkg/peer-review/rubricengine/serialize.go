package rubricengine

import (
	"fmt"
	"strings"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

// Serialize turns the answered prompts into submission responses. Unanswered
// likert, blank text and empty dropdown prompts are left out; checkbox
// prompts are always included.
func Serialize(elements []Element) []types.PromptResponse {
	responses := []types.PromptResponse{}
	for _, e := range elements {
		if !e.IsPrompt() {
			continue
		}
		p := e.Prompt
		resp := types.PromptResponse{
			PromptType: p.PromptType,
			Order:      p.Order,
		}
		if !p.ID.IsZero() {
			resp.PromptID = p.ID.Hex()
		}

		switch p.PromptType {
		case types.PROMPT_TYPE_3_LIKERT, types.PROMPT_TYPE_5_LIKERT, types.PROMPT_TYPE_7_LIKERT:
			if p.Likert == nil {
				continue
			}
			v := *p.Likert
			resp.LikertResponse = &v
		case types.PROMPT_TYPE_TEXT:
			if strings.TrimSpace(p.Text) == "" {
				continue
			}
			resp.TextResponse = p.Text
		case types.PROMPT_TYPE_DROPDOWN:
			if p.Text == "" {
				continue
			}
			resp.DropdownResponse = p.Text
		case types.PROMPT_TYPE_CHECKBOX:
			v := p.Checked
			resp.CheckboxResponse = &v
		default:
			continue
		}
		responses = append(responses, resp)
	}
	return responses
}

// ApplyResponses loads submitted responses into a freshly normalized element
// list. Responses are matched to prompts by prompt ID, or by order when the
// response carries no ID.
func ApplyResponses(elements []Element, responses []types.PromptResponse) ([]Element, error) {
	updated := cloneElements(elements)

	for _, resp := range responses {
		p := findPrompt(updated, resp)
		if p == nil {
			if resp.PromptID != "" {
				return elements, fmt.Errorf("%w: prompt %s", ErrElementNotFound, resp.PromptID)
			}
			return elements, fmt.Errorf("%w: %v", ErrElementNotFound, resp.Order.Value())
		}
		if resp.PromptType != p.PromptType {
			return elements, fmt.Errorf("%w: got %s for %s prompt", ErrResponseTypeMismatch, resp.PromptType, p.PromptType)
		}

		switch p.PromptType {
		case types.PROMPT_TYPE_3_LIKERT, types.PROMPT_TYPE_5_LIKERT, types.PROMPT_TYPE_7_LIKERT:
			if resp.LikertResponse != nil {
				v := *resp.LikertResponse
				p.Likert = &v
			}
		case types.PROMPT_TYPE_TEXT:
			p.Text = resp.TextResponse
		case types.PROMPT_TYPE_DROPDOWN:
			if resp.DropdownResponse != "" && !hasOption(p.PromptOptions, resp.DropdownResponse) {
				return elements, fmt.Errorf("%w: '%s' is not an option of the dropdown", ErrInvalidValue, resp.DropdownResponse)
			}
			p.Text = resp.DropdownResponse
		case types.PROMPT_TYPE_CHECKBOX:
			if resp.CheckboxResponse != nil {
				p.Checked = *resp.CheckboxResponse
			}
		default:
			return elements, fmt.Errorf("%w: %s", ErrUnknownPromptType, p.PromptType)
		}
	}
	return updated, nil
}

func findPrompt(elements []Element, resp types.PromptResponse) *PromptState {
	for _, e := range elements {
		if !e.IsPrompt() {
			continue
		}
		if resp.PromptID != "" {
			if !e.Prompt.ID.IsZero() && e.Prompt.ID.Hex() == resp.PromptID {
				return e.Prompt
			}
			continue
		}
		if e.Order().Value() == resp.Order.Value() {
			return e.Prompt
		}
	}
	return nil
}
