package exporter

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

var fixedColumns = []string{
	"peerReviewID",
	"projectID",
	"rubricID",
	"submitted",
	"authorType",
	"anonymous",
	"author",
	"authorFirst",
	"authorLast",
	"authorEmail",
	"rating",
}

type promptColumn struct {
	key      string
	promptID string
	order    float64
}

// promptColumns returns one column per rubric prompt sorted by order. Columns
// are named P<order>; prompts sharing an order get a numeric suffix.
func promptColumns(rubric prTypes.Rubric) []promptColumn {
	prompts := make([]prTypes.RubricPrompt, len(rubric.Prompts))
	copy(prompts, rubric.Prompts)
	sort.SliceStable(prompts, func(i, j int) bool {
		return prompts[i].Order.Value() < prompts[j].Order.Value()
	})

	cols := make([]promptColumn, 0, len(prompts))
	used := map[string]int{}
	for _, p := range prompts {
		key := "P" + strconv.FormatFloat(p.Order.Value(), 'f', -1, 64)
		used[key]++
		if used[key] > 1 {
			key = fmt.Sprintf("%s_%d", key, used[key])
		}
		col := promptColumn{key: key, order: p.Order.Value()}
		if !p.ID.IsZero() {
			col.promptID = p.ID.Hex()
		}
		cols = append(cols, col)
	}
	return cols
}

func findResponse(col promptColumn, responses []prTypes.PromptResponse) *prTypes.PromptResponse {
	for i, r := range responses {
		if col.promptID != "" && r.PromptID == col.promptID {
			return &responses[i]
		}
	}
	if col.promptID != "" {
		return nil
	}
	for i, r := range responses {
		if r.PromptID == "" && r.Order.Value() == col.order {
			return &responses[i]
		}
	}
	return nil
}

// responseValue returns the answer stored in a prompt response, or nil if unanswered.
func responseValue(r *prTypes.PromptResponse) interface{} {
	if r == nil {
		return nil
	}
	switch {
	case r.LikertResponse != nil:
		return *r.LikertResponse
	case r.CheckboxResponse != nil:
		return *r.CheckboxResponse
	case r.DropdownResponse != "":
		return r.DropdownResponse
	case r.TextResponse != "":
		return r.TextResponse
	}
	return nil
}

func valueToStr(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func submittedAt(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
