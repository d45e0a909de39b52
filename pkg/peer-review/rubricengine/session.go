package rubricengine

import (
	"fmt"

	"github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

type SessionStatus string

const (
	SESSION_STATUS_LOADING    SessionStatus = "loading"
	SESSION_STATUS_READY      SessionStatus = "ready"
	SESSION_STATUS_EDITING    SessionStatus = "editing"
	SESSION_STATUS_VALIDATING SessionStatus = "validating"
	SESSION_STATUS_SUBMITTED  SessionStatus = "submitted"
)

// Session is one reviewer's editing session of a rubric form. It is owned by
// a single caller and is not safe for concurrent use.
type Session struct {
	Elements []Element
	Meta     types.FormMeta
	Status   SessionStatus
}

func NewSession(meta types.FormMeta) *Session {
	return &Session{
		Elements: []Element{},
		Meta:     meta,
		Status:   SESSION_STATUS_LOADING,
	}
}

// Load rebuilds the element list from the rubric and discards previous answers.
func (s *Session) Load(rubric types.Rubric) error {
	if s.Status == SESSION_STATUS_VALIDATING || s.Status == SESSION_STATUS_SUBMITTED {
		return s.transitionError("load")
	}
	s.Elements = Normalize(rubric)
	s.Status = SESSION_STATUS_READY
	return nil
}

func (s *Session) Update(targetOrder float64, raw string) error {
	if !s.isEditable() {
		return s.transitionError("update")
	}
	elements, err := UpdateValue(s.Elements, targetOrder, raw)
	if err != nil {
		return err
	}
	s.Elements = elements
	s.Status = SESSION_STATUS_EDITING
	return nil
}

// SetMeta replaces the form meta. Authenticated is kept from the current meta.
func (s *Session) SetMeta(meta types.FormMeta) error {
	if !s.isEditable() {
		return s.transitionError("set meta")
	}
	meta.Authenticated = s.Meta.Authenticated
	s.Meta = meta
	s.Status = SESSION_STATUS_EDITING
	return nil
}

// BeginSubmit validates the form. A valid form moves to validating and waits
// for CompleteSubmit; an invalid one returns to ready with error flags set.
func (s *Session) BeginSubmit() (Result, error) {
	if !s.isEditable() {
		return Result{}, s.transitionError("submit")
	}
	res := Validate(s.Elements, s.Meta)
	s.Elements = res.Elements
	if res.Valid {
		s.Status = SESSION_STATUS_VALIDATING
	} else {
		s.Status = SESSION_STATUS_READY
	}
	return res, nil
}

// Submission builds the payload to send while the session is validating.
// Name and email are only sent for reviewers without a platform account.
func (s *Session) Submission(projectID string) (types.Submission, error) {
	if s.Status != SESSION_STATUS_VALIDATING {
		return types.Submission{}, s.transitionError("build submission")
	}
	sub := types.Submission{
		ProjectID:       projectID,
		AuthorType:      s.Meta.AuthorType,
		Rating:          s.Meta.Rating,
		PromptResponses: Serialize(s.Elements),
	}
	if !s.Meta.Authenticated {
		sub.AuthorFirst = s.Meta.FirstName
		sub.AuthorLast = s.Meta.LastName
		sub.AuthorEmail = s.Meta.Email
	}
	return sub, nil
}

// CompleteSubmit records the outcome of sending the submission.
func (s *Session) CompleteSubmit(sendErr error) error {
	if s.Status != SESSION_STATUS_VALIDATING {
		return s.transitionError("complete submit")
	}
	if sendErr != nil {
		s.Status = SESSION_STATUS_READY
		return nil
	}
	s.Status = SESSION_STATUS_SUBMITTED
	return nil
}

func (s *Session) isEditable() bool {
	return s.Status == SESSION_STATUS_READY || s.Status == SESSION_STATUS_EDITING
}

func (s *Session) transitionError(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, s.Status)
}
