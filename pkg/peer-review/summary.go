package peerreview

import (
	"context"
	"fmt"
	"sort"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

type PromptSummary struct {
	PromptID      string             `json:"promptID"`
	PromptType    prTypes.PromptType `json:"promptType"`
	Order         float64            `json:"order"`
	ResponseCount int                `json:"responseCount"`
	Average       float64            `json:"average"`
}

type PeerReviewSummary struct {
	ProjectID     string          `json:"projectID"`
	ReviewCount   int             `json:"reviewCount"`
	AverageRating float64         `json:"averageRating"`
	AuthorTypes   map[string]int  `json:"authorTypes"`
	LikertPrompts []PromptSummary `json:"likertPrompts"`
}

type summaryBuilder struct {
	summary     PeerReviewSummary
	ratingSum   float64
	promptSums  map[string]float64
	promptInfos map[string]*PromptSummary
}

func newSummaryBuilder(projectID string) *summaryBuilder {
	return &summaryBuilder{
		summary: PeerReviewSummary{
			ProjectID:     projectID,
			AuthorTypes:   map[string]int{},
			LikertPrompts: []PromptSummary{},
		},
		promptSums:  map[string]float64{},
		promptInfos: map[string]*PromptSummary{},
	}
}

func (b *summaryBuilder) add(review prTypes.PeerReview) error {
	b.summary.ReviewCount++
	b.ratingSum += review.Rating
	b.summary.AuthorTypes[review.AuthorType]++

	for _, resp := range review.PromptResponses {
		if !resp.PromptType.IsLikert() || resp.LikertResponse == nil {
			continue
		}
		key := promptKey(resp)
		info, ok := b.promptInfos[key]
		if !ok {
			info = &PromptSummary{
				PromptID:   resp.PromptID,
				PromptType: resp.PromptType,
				Order:      resp.Order.Value(),
			}
			b.promptInfos[key] = info
		}
		info.ResponseCount++
		b.promptSums[key] += float64(*resp.LikertResponse)
	}
	return nil
}

// promptKey groups responses by prompt ID, or by order for prompts stored
// without one.
func promptKey(resp prTypes.PromptResponse) string {
	if resp.PromptID != "" {
		return resp.PromptID
	}
	return fmt.Sprintf("order:%v", resp.Order.Value())
}

func (b *summaryBuilder) result() PeerReviewSummary {
	s := b.summary
	if s.ReviewCount > 0 {
		s.AverageRating = b.ratingSum / float64(s.ReviewCount)
	}
	for key, info := range b.promptInfos {
		p := *info
		p.Average = b.promptSums[key] / float64(p.ResponseCount)
		s.LikertPrompts = append(s.LikertPrompts, p)
	}
	sort.Slice(s.LikertPrompts, func(i, j int) bool {
		if s.LikertPrompts[i].Order != s.LikertPrompts[j].Order {
			return s.LikertPrompts[i].Order < s.LikertPrompts[j].Order
		}
		return s.LikertPrompts[i].PromptID < s.LikertPrompts[j].PromptID
	})
	return s
}

// GetPeerReviewSummary aggregates every review of a project: review count,
// average star rating, author types and the average answer per likert prompt.
func GetPeerReviewSummary(ctx context.Context, orgID string, projectID string) (PeerReviewSummary, error) {
	b := newSummaryBuilder(projectID)
	if err := ForEachPeerReview(ctx, orgID, projectID, 0, b.add); err != nil {
		return PeerReviewSummary{}, err
	}
	return b.result(), nil
}
