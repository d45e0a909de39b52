package peerreview

import (
	"log/slog"
	"strings"
	"time"

	emailtemplates "github.com/conductor-oer/conductor-backend/pkg/email-templates"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	sc "github.com/conductor-oer/conductor-backend/pkg/smtp-client"
)

// MailSender is implemented by *smtp_client.SmtpClients.
type MailSender interface {
	SendMail(to []string, subject string, htmlContent string, overrides *sc.HeaderOverrides) error
}

type reviewNotifier struct {
	sender          MailSender
	subjectTemplate string
	bodyTemplate    string
}

var notifier *reviewNotifier

// InitNotifications enables mails to the project's notify list after each
// stored review. A nil sender disables them.
func InitNotifications(sender MailSender, subjectTemplate string, bodyTemplate string) {
	if sender == nil {
		notifier = nil
		return
	}
	if subjectTemplate == "" {
		subjectTemplate = emailtemplates.DEFAULT_PEER_REVIEW_RECEIVED_SUBJECT
	}
	notifier = &reviewNotifier{
		sender:          sender,
		subjectTemplate: subjectTemplate,
		bodyTemplate:    bodyTemplate,
	}
}

type reviewReceivedInfos struct {
	OrgID        string
	ProjectID    string
	PeerReviewID string
	RubricTitle  string
	Anonymous    bool
	AuthorName   string
	AuthorType   string
	Rating       float64
	SubmittedAt  string
}

func (n *reviewNotifier) notifyReviewReceived(orgID string, settings prTypes.ProjectSettings, reviewID string, review prTypes.PeerReview) {
	infos := reviewReceivedInfos{
		OrgID:        orgID,
		ProjectID:    review.ProjectID,
		PeerReviewID: reviewID,
		RubricTitle:  review.RubricTitle,
		Anonymous:    review.Anonymous,
		AuthorName:   strings.TrimSpace(review.AuthorFirst + " " + review.AuthorLast),
		AuthorType:   review.AuthorType,
		Rating:       review.Rating,
		SubmittedAt:  time.Unix(review.CreatedAt, 0).UTC().Format(time.RFC3339),
	}

	subject, err := emailtemplates.ResolveTemplate(emailtemplates.TEMPLATE_PEER_REVIEW_RECEIVED+"-subject", n.subjectTemplate, infos)
	if err != nil {
		slog.Error("failed to resolve notification subject", slog.String("orgID", orgID), slog.String("error", err.Error()))
		return
	}
	content, err := emailtemplates.ResolveTemplate(emailtemplates.TEMPLATE_PEER_REVIEW_RECEIVED, n.bodyTemplate, infos)
	if err != nil {
		slog.Error("failed to resolve notification content", slog.String("orgID", orgID), slog.String("error", err.Error()))
		return
	}

	if err := n.sender.SendMail(settings.NotifyEmails, subject, content, nil); err != nil {
		slog.Error("failed to send peer review notification", slog.String("orgID", orgID), slog.String("projectID", review.ProjectID), slog.String("peerReviewID", reviewID), slog.String("error", err.Error()))
		return
	}
	slog.Debug("peer review notification sent", slog.String("orgID", orgID), slog.String("projectID", review.ProjectID), slog.Int("recipients", len(settings.NotifyEmails)))
}
