package emailtemplates

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"
)

const TEMPLATE_PEER_REVIEW_RECEIVED = "peer-review-received"

const DEFAULT_PEER_REVIEW_RECEIVED_SUBJECT = "New peer review for project {{.ProjectID}}"

const defaultPeerReviewReceivedTemplate = `<p>A new peer review was submitted for project <b>{{.ProjectID}}</b>.</p>
<ul>
<li>Rubric: {{.RubricTitle}}</li>
<li>Reviewer: {{if .Anonymous}}anonymous{{else}}{{.AuthorName}}{{end}} ({{.AuthorType}})</li>
<li>Rating: {{.Rating}}</li>
<li>Submitted: {{.SubmittedAt}}</li>
</ul>`

// ResolveTemplate parses templateDef and executes it with contentInfos.
// Values are html escaped.
func ResolveTemplate(tempName string, templateDef string, contentInfos any) (content string, err error) {
	if strings.TrimSpace(templateDef) == "" {
		return "", errors.New("empty template `" + tempName + "`")
	}
	tmpl, err := template.New(tempName).Parse(templateDef)
	if err != nil {
		err = fmt.Errorf("error when parsing template %s: %v", tempName, err)
		return "", err
	}
	var tpl bytes.Buffer

	err = tmpl.Execute(&tpl, contentInfos)
	if err != nil {
		err = fmt.Errorf("error during executing template %s: %v", tempName, err)
		return "", err
	}
	return tpl.String(), nil
}

// LoadTemplate reads a template definition from fname, or returns the built-in
// definition of tempName when fname is empty.
func LoadTemplate(tempName string, fname string) (string, error) {
	if fname == "" {
		switch tempName {
		case TEMPLATE_PEER_REVIEW_RECEIVED:
			return defaultPeerReviewReceivedTemplate, nil
		default:
			return "", fmt.Errorf("no built-in template `%s`", tempName)
		}
	}
	content, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	// fail early on definitions that do not parse
	if _, err := template.New(tempName).Parse(string(content)); err != nil {
		return "", fmt.Errorf("error when parsing template %s: %v", tempName, err)
	}
	return string(content), nil
}
