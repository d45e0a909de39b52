package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
)

const (
	FORMAT_CSV  = "csv"
	FORMAT_JSON = "json"
)

type ReviewExporter struct {
	columns   []promptColumn
	writer    io.Writer
	csvWriter *csv.Writer
	format    string
	counter   int
}

func NewReviewExporter(
	rubric prTypes.Rubric,
	writer io.Writer,
	format string,
) (*ReviewExporter, error) {
	re := &ReviewExporter{
		columns: promptColumns(rubric),
		writer:  writer,
		format:  format,
	}

	if err := re.init(); err != nil {
		return nil, err
	}
	return re, nil
}

func (re *ReviewExporter) Count() int {
	return re.counter
}

func (re *ReviewExporter) init() error {
	if re.writer == nil {
		return fmt.Errorf("writer not initialized")
	}

	var err error
	switch re.format {
	case FORMAT_CSV:
		re.csvWriter = csv.NewWriter(re.writer)
		record := []string{}
		record = append(record, fixedColumns...)
		for _, col := range re.columns {
			record = append(record, col.key)
		}
		err = re.csvWriter.Write(record)
	case FORMAT_JSON:
		_, err = re.writer.Write([]byte("{ \"peerReviews\": ["))
	default:
		return fmt.Errorf("unsupported format: %s", re.format)
	}
	return err
}

func (re *ReviewExporter) WriteReview(review prTypes.PeerReview) error {
	switch re.format {
	case FORMAT_CSV:
		if err := re.csvWriter.Write(re.toRecord(review)); err != nil {
			return err
		}
	case FORMAT_JSON:
		rV, err := json.Marshal(re.toFlatObj(review))
		if err != nil {
			return err
		}
		if re.counter > 0 {
			if _, err = re.writer.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err = re.writer.Write(rV); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format: %s", re.format)
	}

	re.counter += 1
	return nil
}

func (re *ReviewExporter) Finish() error {
	switch re.format {
	case FORMAT_CSV:
		re.csvWriter.Flush()
		return re.csvWriter.Error()
	case FORMAT_JSON:
		_, err := re.writer.Write([]byte("]}"))
		return err
	default:
		return fmt.Errorf("unsupported format: %s", re.format)
	}
}

func (re *ReviewExporter) toRecord(review prTypes.PeerReview) []string {
	record := []string{
		review.ID.Hex(),
		review.ProjectID,
		review.RubricID,
		submittedAt(review.CreatedAt),
		review.AuthorType,
		valueToStr(review.Anonymous),
		review.Author,
		review.AuthorFirst,
		review.AuthorLast,
		review.AuthorEmail,
		valueToStr(review.Rating),
	}
	for _, col := range re.columns {
		record = append(record, valueToStr(responseValue(findResponse(col, review.PromptResponses))))
	}
	return record
}

func (re *ReviewExporter) toFlatObj(review prTypes.PeerReview) map[string]interface{} {
	obj := map[string]interface{}{
		"peerReviewID": review.ID.Hex(),
		"projectID":    review.ProjectID,
		"rubricID":     review.RubricID,
		"submitted":    submittedAt(review.CreatedAt),
		"authorType":   review.AuthorType,
		"anonymous":    review.Anonymous,
		"author":       review.Author,
		"authorFirst":  review.AuthorFirst,
		"authorLast":   review.AuthorLast,
		"authorEmail":  review.AuthorEmail,
		"rating":       review.Rating,
	}
	for _, col := range re.columns {
		obj[col.key] = responseValue(findResponse(col, review.PromptResponses))
	}
	return obj
}
