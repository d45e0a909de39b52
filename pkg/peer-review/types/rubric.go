package types

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PromptType string

const (
	PROMPT_TYPE_3_LIKERT PromptType = "3-likert"
	PROMPT_TYPE_5_LIKERT PromptType = "5-likert"
	PROMPT_TYPE_7_LIKERT PromptType = "7-likert"
	PROMPT_TYPE_TEXT     PromptType = "text"
	PROMPT_TYPE_DROPDOWN PromptType = "dropdown"
	PROMPT_TYPE_CHECKBOX PromptType = "checkbox"
)

// LikertPoints returns the number of scale points of a likert prompt type, 0 for other types.
func (pt PromptType) LikertPoints() int {
	switch pt {
	case PROMPT_TYPE_3_LIKERT:
		return 3
	case PROMPT_TYPE_5_LIKERT:
		return 5
	case PROMPT_TYPE_7_LIKERT:
		return 7
	default:
		return 0
	}
}

func (pt PromptType) IsLikert() bool {
	return pt.LikertPoints() > 0
}

func (pt PromptType) IsValid() bool {
	switch pt {
	case PROMPT_TYPE_3_LIKERT, PROMPT_TYPE_5_LIKERT, PROMPT_TYPE_7_LIKERT,
		PROMPT_TYPE_TEXT, PROMPT_TYPE_DROPDOWN, PROMPT_TYPE_CHECKBOX:
		return true
	}
	return false
}

type Rubric struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrgID        string             `bson:"orgID" json:"orgID"`
	RubricTitle  string             `bson:"rubricTitle" json:"rubricTitle"`
	IsOrgDefault bool               `bson:"isOrgDefault" json:"isOrgDefault"`
	Headings     []RubricHeading    `bson:"headings,omitempty" json:"headings,omitempty"`
	TextBlocks   []RubricTextBlock  `bson:"textBlocks,omitempty" json:"textBlocks,omitempty"`
	Prompts      []RubricPrompt     `bson:"prompts,omitempty" json:"prompts,omitempty"`
	CreatedAt    int64              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    int64              `bson:"updatedAt" json:"updatedAt"`
}

type RubricHeading struct {
	Order Order  `bson:"order" json:"order"`
	Text  string `bson:"text" json:"text"`
}

// RubricTextBlock holds markdown text shown between prompts
type RubricTextBlock struct {
	Order Order  `bson:"order" json:"order"`
	Text  string `bson:"text" json:"text"`
}

type RubricPrompt struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Order          Order              `bson:"order" json:"order"`
	PromptType     PromptType         `bson:"promptType" json:"promptType"`
	PromptText     string             `bson:"promptText" json:"promptText"`
	PromptRequired bool               `bson:"promptRequired" json:"promptRequired"`
	PromptOptions  []PromptOption     `bson:"promptOptions,omitempty" json:"promptOptions,omitempty"`
}

// PromptOption is one choice of a dropdown prompt
type PromptOption struct {
	Value string `bson:"value" json:"value"`
	Text  string `bson:"text" json:"text"`
}

// CheckDefinition reports the first structural problem of a rubric definition.
func (r Rubric) CheckDefinition() error {
	if r.RubricTitle == "" {
		return fmt.Errorf("rubric title is required")
	}
	for i, p := range r.Prompts {
		if !p.PromptType.IsValid() {
			return fmt.Errorf("prompt %d: unknown prompt type '%s'", i, p.PromptType)
		}
		if p.PromptText == "" {
			return fmt.Errorf("prompt %d: prompt text is required", i)
		}
		if p.PromptType == PROMPT_TYPE_DROPDOWN && len(p.PromptOptions) == 0 {
			return fmt.Errorf("prompt %d: dropdown prompt requires at least one option", i)
		}
	}
	return nil
}

// AssignPromptIDs gives every prompt without an ID a new one.
func (r *Rubric) AssignPromptIDs() {
	for i := range r.Prompts {
		if r.Prompts[i].ID.IsZero() {
			r.Prompts[i].ID = primitive.NewObjectID()
		}
	}
}

// ResolveOrders writes the default order into every element stored without a
// usable one. Returns true if anything changed.
func (r *Rubric) ResolveOrders() bool {
	changed := false
	resolve := func(o *Order) {
		if !o.IsSet() {
			*o = NewOrder(o.Value())
			changed = true
		}
	}
	for i := range r.Headings {
		resolve(&r.Headings[i].Order)
	}
	for i := range r.TextBlocks {
		resolve(&r.TextBlocks[i].Order)
	}
	for i := range r.Prompts {
		resolve(&r.Prompts[i].Order)
	}
	return changed
}
