package types

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	AUTHOR_TYPE_INSTRUCTOR = "instructor"
	AUTHOR_TYPE_STUDENT    = "student"
)

const (
	MIN_RATING            = 0.5
	MAX_RATING            = 5.0
	MAX_TEXT_RESPONSE_LEN = 10000
)

// FormMeta holds the fields of a peer review form that are not part of the rubric.
type FormMeta struct {
	AuthorType string  `json:"authorType"`
	FirstName  string  `json:"firstName,omitempty"`
	LastName   string  `json:"lastName,omitempty"`
	Email      string  `json:"email,omitempty"`
	Rating     float64 `json:"rating"`
	// Authenticated is derived from the request token, never read from the client
	Authenticated bool `json:"-"`
}

type PromptResponse struct {
	PromptID         string     `bson:"promptID" json:"promptID"`
	PromptType       PromptType `bson:"promptType" json:"promptType"`
	Order            Order      `bson:"order" json:"order"`
	LikertResponse   *int       `bson:"likertResponse,omitempty" json:"likertResponse,omitempty"`
	TextResponse     string     `bson:"textResponse,omitempty" json:"textResponse,omitempty"`
	DropdownResponse string     `bson:"dropdownResponse,omitempty" json:"dropdownResponse,omitempty"`
	CheckboxResponse *bool      `bson:"checkboxResponse,omitempty" json:"checkboxResponse,omitempty"`
}

// Submission is the payload a reviewer posts for a project.
type Submission struct {
	ProjectID       string           `json:"projectID"`
	AuthorType      string           `json:"authorType"`
	Rating          float64          `json:"rating"`
	AuthorFirst     string           `json:"authorFirst,omitempty"`
	AuthorLast      string           `json:"authorLast,omitempty"`
	AuthorEmail     string           `json:"authorEmail,omitempty"`
	PromptResponses []PromptResponse `json:"promptResponses"`
}

func (s Submission) FormMeta() FormMeta {
	return FormMeta{
		AuthorType: s.AuthorType,
		FirstName:  s.AuthorFirst,
		LastName:   s.AuthorLast,
		Email:      s.AuthorEmail,
		Rating:     s.Rating,
	}
}

type PeerReview struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProjectID       string             `bson:"projectID" json:"projectID"`
	RubricID        string             `bson:"rubricID" json:"rubricID"`
	RubricTitle     string             `bson:"rubricTitle" json:"rubricTitle"`
	Author          string             `bson:"author,omitempty" json:"author,omitempty"`
	Anonymous       bool               `bson:"anonymous" json:"anonymous"`
	AuthorType      string             `bson:"authorType" json:"authorType"`
	AuthorFirst     string             `bson:"authorFirst,omitempty" json:"authorFirst,omitempty"`
	AuthorLast      string             `bson:"authorLast,omitempty" json:"authorLast,omitempty"`
	AuthorEmail     string             `bson:"authorEmail,omitempty" json:"authorEmail,omitempty"`
	Rating          float64            `bson:"rating" json:"rating"`
	PromptResponses []PromptResponse   `bson:"promptResponses" json:"promptResponses"`
	CreatedAt       int64              `bson:"createdAt" json:"createdAt"`
}

// ProjectSettings controls which rubric a project is reviewed with.
type ProjectSettings struct {
	ProjectID      string   `bson:"projectID" json:"projectID"`
	RubricID       string   `bson:"rubricID,omitempty" json:"rubricID,omitempty"`
	AllowAnonymous bool     `bson:"allowAnonymous" json:"allowAnonymous"`
	NotifyEmails   []string `bson:"notifyEmails,omitempty" json:"notifyEmails,omitempty"`
	UpdatedAt      int64    `bson:"updatedAt" json:"updatedAt"`
}

// Submitter identifies who posts a peer review. UserID is empty for anonymous reviewers.
type Submitter struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
}

func (s Submitter) IsAuthenticated() bool {
	return s.UserID != ""
}
