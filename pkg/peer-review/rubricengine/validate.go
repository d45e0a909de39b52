package rubricengine

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

type IssueKind string

const (
	ISSUE_MISSING_REQUIRED_FIELD  IssueKind = "MissingRequiredField"
	ISSUE_OUT_OF_RANGE_RATING     IssueKind = "OutOfRangeRating"
	ISSUE_TEXT_TOO_LONG           IssueKind = "TextTooLong"
	ISSUE_UNSUPPORTED_PROMPT_TYPE IssueKind = "UnsupportedPromptType"
)

const (
	FIELD_AUTHOR_TYPE = "authorType"
	FIELD_FIRST_NAME  = "firstName"
	FIELD_LAST_NAME   = "lastName"
	FIELD_EMAIL       = "email"
	FIELD_RATING      = "rating"
	FIELD_PROMPT      = "prompt"
)

type Issue struct {
	Kind     IssueKind `json:"kind"`
	Field    string    `json:"field"`
	Order    *float64  `json:"order,omitempty"`
	PromptID string    `json:"promptID,omitempty"`
}

type Result struct {
	Valid    bool      `json:"valid"`
	Elements []Element `json:"elements"`
	Issues   []Issue   `json:"issues,omitempty"`
}

// Validate checks every prompt and the form meta fields without stopping at
// the first failure, so all error flags are refreshed in one pass.
func Validate(elements []Element, meta types.FormMeta) Result {
	res := Result{
		Valid:    true,
		Elements: cloneElements(elements),
		Issues:   []Issue{},
	}

	for i := range res.Elements {
		e := res.Elements[i]
		if !e.IsPrompt() {
			continue
		}
		issue := checkPrompt(e.Prompt)
		e.Prompt.Error = issue != nil
		if issue != nil {
			res.Valid = false
			res.Issues = append(res.Issues, *issue)
		}
	}

	for _, issue := range checkFormMeta(meta) {
		res.Valid = false
		res.Issues = append(res.Issues, issue)
	}
	return res
}

func checkPrompt(p *PromptState) *Issue {
	newIssue := func(kind IssueKind) *Issue {
		order := p.Order.Value()
		issue := &Issue{Kind: kind, Field: FIELD_PROMPT, Order: &order}
		if !p.ID.IsZero() {
			issue.PromptID = p.ID.Hex()
		}
		return issue
	}

	switch p.PromptType {
	case types.PROMPT_TYPE_3_LIKERT, types.PROMPT_TYPE_5_LIKERT, types.PROMPT_TYPE_7_LIKERT:
		if !p.PromptRequired {
			return nil
		}
		if p.Likert == nil {
			return newIssue(ISSUE_MISSING_REQUIRED_FIELD)
		}
		if *p.Likert < 1 || *p.Likert > p.PromptType.LikertPoints() {
			return newIssue(ISSUE_OUT_OF_RANGE_RATING)
		}
	case types.PROMPT_TYPE_TEXT:
		if p.PromptRequired {
			if p.Text == "" {
				return newIssue(ISSUE_MISSING_REQUIRED_FIELD)
			}
			return nil
		}
		// the length cap only applies to optional text prompts
		if utf8.RuneCountInString(p.Text) > types.MAX_TEXT_RESPONSE_LEN {
			return newIssue(ISSUE_TEXT_TOO_LONG)
		}
	case types.PROMPT_TYPE_DROPDOWN:
		if p.PromptRequired && p.Text == "" {
			return newIssue(ISSUE_MISSING_REQUIRED_FIELD)
		}
	case types.PROMPT_TYPE_CHECKBOX:
		if p.PromptRequired && !p.Checked {
			return newIssue(ISSUE_MISSING_REQUIRED_FIELD)
		}
	default:
		return newIssue(ISSUE_UNSUPPORTED_PROMPT_TYPE)
	}
	return nil
}

func checkFormMeta(meta types.FormMeta) []Issue {
	issues := []Issue{}
	if strings.TrimSpace(meta.AuthorType) == "" {
		issues = append(issues, Issue{Kind: ISSUE_MISSING_REQUIRED_FIELD, Field: FIELD_AUTHOR_TYPE})
	}
	if !meta.Authenticated {
		if strings.TrimSpace(meta.FirstName) == "" {
			issues = append(issues, Issue{Kind: ISSUE_MISSING_REQUIRED_FIELD, Field: FIELD_FIRST_NAME})
		}
		if strings.TrimSpace(meta.LastName) == "" {
			issues = append(issues, Issue{Kind: ISSUE_MISSING_REQUIRED_FIELD, Field: FIELD_LAST_NAME})
		}
		if strings.TrimSpace(meta.Email) == "" {
			issues = append(issues, Issue{Kind: ISSUE_MISSING_REQUIRED_FIELD, Field: FIELD_EMAIL})
		}
	}
	if math.IsNaN(meta.Rating) || meta.Rating < types.MIN_RATING || meta.Rating > types.MAX_RATING {
		issues = append(issues, Issue{Kind: ISSUE_OUT_OF_RANGE_RATING, Field: FIELD_RATING})
	}
	return issues
}
