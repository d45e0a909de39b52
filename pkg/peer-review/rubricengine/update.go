package rubricengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

// UpdateValue returns a copy of elements where every prompt at targetOrder holds
// the answer parsed from raw. Form inputs deliver strings: likert answers are
// parsed as integers, checkbox answers as booleans.
func UpdateValue(elements []Element, targetOrder float64, raw string) ([]Element, error) {
	updated := cloneElements(elements)
	found := false
	for i := range updated {
		e := updated[i]
		if !e.IsPrompt() || e.Order().Value() != targetOrder {
			continue
		}
		found = true
		if err := setPromptValue(e.Prompt, raw); err != nil {
			return elements, err
		}
	}
	if !found {
		return elements, fmt.Errorf("%w: %v", ErrElementNotFound, targetOrder)
	}
	return updated, nil
}

func setPromptValue(p *PromptState, raw string) error {
	switch p.PromptType {
	case types.PROMPT_TYPE_3_LIKERT, types.PROMPT_TYPE_5_LIKERT, types.PROMPT_TYPE_7_LIKERT:
		raw = strings.TrimSpace(raw)
		if raw == "" {
			p.Likert = nil
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: likert value '%s' is not an integer", ErrInvalidValue, raw)
		}
		p.Likert = &v
	case types.PROMPT_TYPE_TEXT:
		p.Text = raw
	case types.PROMPT_TYPE_DROPDOWN:
		if raw != "" && !hasOption(p.PromptOptions, raw) {
			return fmt.Errorf("%w: '%s' is not an option of the dropdown", ErrInvalidValue, raw)
		}
		p.Text = raw
	case types.PROMPT_TYPE_CHECKBOX:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%w: checkbox value '%s' is not a boolean", ErrInvalidValue, raw)
		}
		p.Checked = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownPromptType, p.PromptType)
	}
	return nil
}

func hasOption(options []types.PromptOption, value string) bool {
	for _, o := range options {
		if o.Value == value {
			return true
		}
	}
	return false
}
