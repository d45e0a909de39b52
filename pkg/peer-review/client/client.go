package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	httpclient "github.com/conductor-oer/conductor-backend/pkg/http-client"
	"github.com/conductor-oer/conductor-backend/pkg/peer-review/rubricengine"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

var ErrFormInvalid = errors.New("peer review form is not valid")

// Form is the part of the form endpoint response the client needs; elements
// are rebuilt locally from the rubric.
type Form struct {
	Settings prTypes.ProjectSettings `json:"settings"`
	Rubric   prTypes.Rubric          `json:"rubric"`
}

type submitResponse struct {
	Msg          string `json:"msg"`
	PeerReviewID string `json:"peerReviewID"`
}

// Client talks to the public peer review endpoints of one org.
type Client struct {
	conf  httpclient.ClientConfig
	orgID string
}

func NewClient(conf httpclient.ClientConfig, orgID string) *Client {
	return &Client{
		conf:  conf,
		orgID: orgID,
	}
}

func (c *Client) projectPath(projectID string, suffix string) string {
	return fmt.Sprintf("/v1/peer-review/%s/projects/%s/%s", url.PathEscape(c.orgID), url.PathEscape(projectID), suffix)
}

func (c *Client) FetchForm(ctx context.Context, projectID string) (Form, error) {
	var form Form
	if err := c.conf.Do(ctx, http.MethodGet, c.projectPath(projectID, "form"), nil, &form); err != nil {
		return Form{}, err
	}
	return form, nil
}

// NewSession fetches the project form and loads it into a new session. The
// session counts as authenticated when the client sends a bearer token.
func (c *Client) NewSession(ctx context.Context, projectID string, meta prTypes.FormMeta) (*rubricengine.Session, error) {
	meta.Authenticated = c.conf.BearerToken != ""
	session := rubricengine.NewSession(meta)

	form, err := c.FetchForm(ctx, projectID)
	if err != nil {
		return session, err
	}
	if err := session.Load(form.Rubric); err != nil {
		return session, err
	}
	return session, nil
}

// Submit validates the session and posts the submission once. On a failed
// call the session goes back to ready so the reviewer can try again. An
// invalid form returns ErrFormInvalid together with the validation result.
func (c *Client) Submit(ctx context.Context, projectID string, session *rubricengine.Session) (string, rubricengine.Result, error) {
	res, err := session.BeginSubmit()
	if err != nil {
		return "", res, err
	}
	if !res.Valid {
		return "", res, ErrFormInvalid
	}

	sub, err := session.Submission(projectID)
	if err != nil {
		return "", res, err
	}

	var out submitResponse
	sendErr := c.conf.Do(ctx, http.MethodPost, c.projectPath(projectID, "reviews"), sub, &out)
	if err := session.CompleteSubmit(sendErr); err != nil {
		return "", res, err
	}
	if sendErr != nil {
		slog.Warn("peer review submission failed", slog.String("orgID", c.orgID), slog.String("projectID", projectID), slog.String("error", sendErr.Error()))
		return "", res, sendErr
	}
	return out.PeerReviewID, res, nil
}
