package rubricengine

import (
	"math"
	"strings"
	"testing"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/google/go-cmp/cmp"
)

func validMeta() types.FormMeta {
	return types.FormMeta{
		AuthorType: types.AUTHOR_TYPE_INSTRUCTOR,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.org",
		Rating:     4.5,
	}
}

func likertAndTextRubric() types.Rubric {
	return types.Rubric{
		RubricTitle: "Short",
		Prompts: []types.RubricPrompt{
			{Order: types.NewOrder(1), PromptType: types.PROMPT_TYPE_5_LIKERT, PromptText: "Quality", PromptRequired: true},
			{Order: types.NewOrder(2), PromptType: types.PROMPT_TYPE_TEXT, PromptText: "Comments"},
		},
	}
}

func singlePrompt(pt types.PromptType, required bool) []Element {
	r := types.Rubric{Prompts: []types.RubricPrompt{
		{Order: types.NewOrder(1), PromptType: pt, PromptText: "q", PromptRequired: required,
			PromptOptions: []types.PromptOption{{Value: "a", Text: "A"}}},
	}}
	return Normalize(r)
}

func TestValidateScenarios(t *testing.T) {
	t.Run("likert unset and text empty", func(t *testing.T) {
		elements := Normalize(likertAndTextRubric())
		res := Validate(elements, validMeta())
		if res.Valid {
			t.Error("form should be invalid")
		}
		if !res.Elements[0].Prompt.Error {
			t.Error("likert element should be flagged")
		}
		if res.Elements[1].Prompt.Error {
			t.Error("text element should not be flagged")
		}
		if len(res.Issues) != 1 || res.Issues[0].Kind != ISSUE_MISSING_REQUIRED_FIELD {
			t.Errorf("unexpected issues: %v", res.Issues)
		}
		if elements[0].Prompt.Error {
			t.Error("input elements should not be modified")
		}
	})

	t.Run("likert set, rating and author type given", func(t *testing.T) {
		elements, err := UpdateValue(Normalize(likertAndTextRubric()), 1, "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		meta := types.FormMeta{AuthorType: "instructor", Rating: 4.5, Authenticated: true}
		res := Validate(elements, meta)
		if !res.Valid {
			t.Fatalf("form should be valid, issues: %v", res.Issues)
		}

		got := Serialize(res.Elements)
		want := []types.PromptResponse{
			{PromptType: types.PROMPT_TYPE_5_LIKERT, Order: types.NewOrder(1), LikertResponse: intPtr(3)},
		}
		if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b types.Order) bool { return a == b })); diff != "" {
			t.Errorf("unexpected responses (-want +got):\n%s", diff)
		}
	})

	t.Run("rating zero is invalid", func(t *testing.T) {
		elements, _ := UpdateValue(Normalize(likertAndTextRubric()), 1, "5")
		meta := validMeta()
		meta.Rating = 0
		res := Validate(elements, meta)
		if res.Valid {
			t.Error("form should be invalid")
		}
		if len(res.Issues) != 1 || res.Issues[0].Field != FIELD_RATING || res.Issues[0].Kind != ISSUE_OUT_OF_RANGE_RATING {
			t.Errorf("unexpected issues: %v", res.Issues)
		}
	})
}

func TestValidateRequiredLikert(t *testing.T) {
	for _, pt := range []types.PromptType{types.PROMPT_TYPE_3_LIKERT, types.PROMPT_TYPE_5_LIKERT, types.PROMPT_TYPE_7_LIKERT} {
		points := pt.LikertPoints()
		t.Run(string(pt), func(t *testing.T) {
			res := Validate(singlePrompt(pt, true), validMeta())
			if !res.Elements[0].Prompt.Error || res.Valid {
				t.Error("unset likert should be flagged")
			}

			for v := -1; v <= points+1; v++ {
				elements := singlePrompt(pt, true)
				elements[0].Prompt.Likert = intPtr(v)
				res := Validate(elements, validMeta())
				wantError := v < 1 || v > points
				if res.Elements[0].Prompt.Error != wantError {
					t.Errorf("value %d: error = %v, want %v", v, res.Elements[0].Prompt.Error, wantError)
				}
				if res.Valid == wantError {
					t.Errorf("value %d: valid = %v", v, res.Valid)
				}
			}
		})
	}
}

func TestValidatePrompts(t *testing.T) {
	longText := strings.Repeat("a", types.MAX_TEXT_RESPONSE_LEN+1)

	tests := []struct {
		name      string
		pt        types.PromptType
		required  bool
		set       func(p *PromptState)
		wantError bool
		wantKind  IssueKind
	}{
		{name: "optional likert unset", pt: types.PROMPT_TYPE_5_LIKERT},
		{name: "optional likert out of range is not checked", pt: types.PROMPT_TYPE_5_LIKERT, set: func(p *PromptState) { p.Likert = intPtr(9) }},
		{name: "required text empty", pt: types.PROMPT_TYPE_TEXT, required: true, wantError: true, wantKind: ISSUE_MISSING_REQUIRED_FIELD},
		{name: "required text filled", pt: types.PROMPT_TYPE_TEXT, required: true, set: func(p *PromptState) { p.Text = "ok" }},
		{name: "required text over limit", pt: types.PROMPT_TYPE_TEXT, required: true, set: func(p *PromptState) { p.Text = longText }},
		{name: "optional text empty", pt: types.PROMPT_TYPE_TEXT},
		{name: "optional text at limit", pt: types.PROMPT_TYPE_TEXT, set: func(p *PromptState) { p.Text = longText[1:] }},
		{name: "optional text too long", pt: types.PROMPT_TYPE_TEXT, set: func(p *PromptState) { p.Text = longText }, wantError: true, wantKind: ISSUE_TEXT_TOO_LONG},
		{name: "required dropdown empty", pt: types.PROMPT_TYPE_DROPDOWN, required: true, wantError: true, wantKind: ISSUE_MISSING_REQUIRED_FIELD},
		{name: "required dropdown chosen", pt: types.PROMPT_TYPE_DROPDOWN, required: true, set: func(p *PromptState) { p.Text = "a" }},
		{name: "required checkbox unchecked", pt: types.PROMPT_TYPE_CHECKBOX, required: true, wantError: true, wantKind: ISSUE_MISSING_REQUIRED_FIELD},
		{name: "required checkbox checked", pt: types.PROMPT_TYPE_CHECKBOX, required: true, set: func(p *PromptState) { p.Checked = true }},
		{name: "optional checkbox unchecked", pt: types.PROMPT_TYPE_CHECKBOX},
		{name: "unknown prompt type", pt: types.PromptType("slider"), wantError: true, wantKind: ISSUE_UNSUPPORTED_PROMPT_TYPE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			elements := singlePrompt(tt.pt, tt.required)
			if tt.set != nil {
				tt.set(elements[0].Prompt)
			}
			res := Validate(elements, validMeta())
			if res.Elements[0].Prompt.Error != tt.wantError {
				t.Errorf("error = %v, want %v", res.Elements[0].Prompt.Error, tt.wantError)
			}
			if res.Valid == tt.wantError {
				t.Errorf("valid = %v, want %v", res.Valid, !tt.wantError)
			}
			if tt.wantError && (len(res.Issues) != 1 || res.Issues[0].Kind != tt.wantKind) {
				t.Errorf("unexpected issues: %v", res.Issues)
			}
		})
	}
}

func TestValidateClearsPreviousErrors(t *testing.T) {
	elements := singlePrompt(types.PROMPT_TYPE_TEXT, true)
	res := Validate(elements, validMeta())
	if !res.Elements[0].Prompt.Error {
		t.Fatal("expected error flag")
	}
	fixed, err := UpdateValue(res.Elements, 1, "filled in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res = Validate(fixed, validMeta())
	if res.Elements[0].Prompt.Error || !res.Valid {
		t.Error("error flag should be cleared after fixing the value")
	}
}

func TestValidateFormMeta(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(m *types.FormMeta)
		wantFields []string
	}{
		{name: "valid", modify: func(m *types.FormMeta) {}},
		{name: "missing author type", modify: func(m *types.FormMeta) { m.AuthorType = " " }, wantFields: []string{FIELD_AUTHOR_TYPE}},
		{name: "anonymous without name and email", modify: func(m *types.FormMeta) {
			m.FirstName = ""
			m.LastName = ""
			m.Email = ""
		}, wantFields: []string{FIELD_FIRST_NAME, FIELD_LAST_NAME, FIELD_EMAIL}},
		{name: "authenticated without name and email", modify: func(m *types.FormMeta) {
			m.Authenticated = true
			m.FirstName = ""
			m.LastName = ""
			m.Email = ""
		}},
		{name: "rating minimum", modify: func(m *types.FormMeta) { m.Rating = 0.5 }},
		{name: "rating maximum", modify: func(m *types.FormMeta) { m.Rating = 5 }},
		{name: "rating too low", modify: func(m *types.FormMeta) { m.Rating = 0.4 }, wantFields: []string{FIELD_RATING}},
		{name: "rating too high", modify: func(m *types.FormMeta) { m.Rating = 5.5 }, wantFields: []string{FIELD_RATING}},
		{name: "rating not a number", modify: func(m *types.FormMeta) { m.Rating = math.NaN() }, wantFields: []string{FIELD_RATING}},
		{name: "everything missing", modify: func(m *types.FormMeta) { *m = types.FormMeta{} },
			wantFields: []string{FIELD_AUTHOR_TYPE, FIELD_FIRST_NAME, FIELD_LAST_NAME, FIELD_EMAIL, FIELD_RATING}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := validMeta()
			tt.modify(&meta)
			res := Validate([]Element{}, meta)

			gotFields := []string{}
			for _, issue := range res.Issues {
				gotFields = append(gotFields, issue.Field)
			}
			wantFields := tt.wantFields
			if wantFields == nil {
				wantFields = []string{}
			}
			if diff := cmp.Diff(wantFields, gotFields); diff != "" {
				t.Errorf("unexpected issue fields (-want +got):\n%s", diff)
			}
			if res.Valid != (len(wantFields) == 0) {
				t.Errorf("valid = %v", res.Valid)
			}
		})
	}
}

func TestValidateReportsAllIssues(t *testing.T) {
	r := types.Rubric{Prompts: []types.RubricPrompt{
		{Order: types.NewOrder(1), PromptType: types.PROMPT_TYPE_3_LIKERT, PromptText: "a", PromptRequired: true},
		{Order: types.NewOrder(2), PromptType: types.PROMPT_TYPE_CHECKBOX, PromptText: "b", PromptRequired: true},
		{Order: types.NewOrder(3), PromptType: types.PROMPT_TYPE_TEXT, PromptText: "c", PromptRequired: true},
	}}
	res := Validate(Normalize(r), types.FormMeta{})
	for i, e := range res.Elements {
		if !e.Prompt.Error {
			t.Errorf("element %d should be flagged", i)
		}
	}
	if len(res.Issues) != 3+5 {
		t.Errorf("expected 8 issues, got %d: %v", len(res.Issues), res.Issues)
	}
}
