// Package corpus reads the structured JSON records produced by the
// extraction pipelines and shapes them for indexing.
package corpus

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kjhmoon/ielts-chat-bot/internal/domain"
)

// Meta is the identity block shared by all record kinds.
type Meta struct {
	DocID      string `json:"doc_id"`
	Category   string `json:"category,omitempty"`
	Branch     string `json:"branch,omitempty"`
	CourseType string `json:"course_type,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
}

// FAQRecord is one administrative question/answer record.
type FAQRecord struct {
	Meta           Meta `json:"meta_data"`
	SearchCriteria struct {
		Intent     string   `json:"intent"`
		TargetUser string   `json:"target_user"`
		Keywords   []string `json:"keywords"`
	} `json:"search_criteria"`
	DisplayInfo struct {
		LinkText string   `json:"link_text"`
		Tags     []string `json:"tags"`
	} `json:"display_info"`
	Details struct {
		QuestionSummary  string   `json:"question_summary"`
		AnswerSummary    string   `json:"answer_summary"`
		StructuredPoints []string `json:"structured_points"`
		RelatedAction    string   `json:"related_action"`
	} `json:"faq_details"`
}

// ReviewRecord is one anonymized student testimonial.
type ReviewRecord struct {
	Meta           Meta `json:"meta_data"`
	SearchCriteria struct {
		Status       string `json:"status"`
		PainPoint    string `json:"pain_point"`
		SolutionName string `json:"solution_course"`
		Outcome      string `json:"outcome"`
	} `json:"search_criteria"`
	DisplayInfo struct {
		LinkText string   `json:"link_text"`
		Tags     []string `json:"tags"`
	} `json:"display_info"`
	FactSheet struct {
		Duration string `json:"duration"`
		Scores   string `json:"scores"`
	} `json:"fact_sheet"`
}

// TimetableRecord is one course offering with schedule and pricing.
type TimetableRecord struct {
	Meta        Meta `json:"meta_data"`
	DisplayInfo struct {
		TitleMain   string `json:"title_main"`
		TitleSub    string `json:"title_sub"`
		StatusBadge string `json:"status_badge"`
		LinkURL     string `json:"link_url"`
	} `json:"display_info"`
	SearchKeywords []string `json:"search_keywords"`
}

// Document is the domain-neutral shape a record takes before embedding:
// the text to vectorize, the text to mine keyword tokens from, the display
// tags, and the flat metadata payload (pre-normalization, may hold nested
// values and nulls).
type Document struct {
	SourceID string
	Text     string
	NounText string
	Tags     []string
	Metadata map[string]any
}

// BuildDocument shapes one flattened record for its collection. A record that
// is not a JSON object or lacks its required blocks returns ErrMalformedRecord
// so the caller can skip it without failing the batch.
func BuildDocument(collection string, raw json.RawMessage) (Document, error) {
	if !isObject(raw) {
		return Document{}, fmt.Errorf("record is not an object: %w", domain.ErrMalformedRecord)
	}

	switch collection {
	case domain.CollectionFAQ:
		return buildFAQ(raw)
	case domain.CollectionReview:
		return buildReview(raw)
	case domain.CollectionTimetable:
		return buildTimetable(raw)
	default:
		return Document{}, fmt.Errorf("unknown collection %q: %w", collection, domain.ErrMalformedRecord)
	}
}

func buildFAQ(raw json.RawMessage) (Document, error) {
	var rec FAQRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Document{}, fmt.Errorf("decode faq record: %w: %w", domain.ErrMalformedRecord, err)
	}
	if rec.Details.QuestionSummary == "" && rec.Details.AnswerSummary == "" {
		return Document{}, fmt.Errorf("faq record without details: %w", domain.ErrMalformedRecord)
	}

	return Document{
		SourceID: orUnknown(rec.Meta.DocID),
		Text:     fmt.Sprintf("Q: %s\nA: %s", rec.Details.QuestionSummary, rec.Details.AnswerSummary),
		NounText: rec.Details.QuestionSummary + " " + rec.Details.AnswerSummary,
		Tags:     rec.SearchCriteria.Keywords,
		Metadata: map[string]any{
			"category": orDefault(rec.Meta.Category, "General"),
			"source":   domain.CollectionFAQ,
		},
	}, nil
}

func buildReview(raw json.RawMessage) (Document, error) {
	var rec ReviewRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Document{}, fmt.Errorf("decode review record: %w: %w", domain.ErrMalformedRecord, err)
	}
	c := rec.SearchCriteria
	if c.Status == "" && c.PainPoint == "" && c.Outcome == "" {
		return Document{}, fmt.Errorf("review record without search criteria: %w", domain.ErrMalformedRecord)
	}

	displayJSON, err := json.Marshal(rec.DisplayInfo)
	if err != nil {
		return Document{}, fmt.Errorf("marshal display info: %w", err)
	}

	return Document{
		SourceID: orUnknown(rec.Meta.DocID),
		Text:     fmt.Sprintf("상황: %s, 고민: %s, 해결: %s", c.Status, c.PainPoint, c.Outcome),
		NounText: c.PainPoint + " " + c.Outcome,
		Tags:     rec.DisplayInfo.Tags,
		Metadata: map[string]any{
			"status":       c.Status,
			"score":        rec.FactSheet.Scores,
			"source_url":   rec.Meta.SourceURL,
			"source":       domain.CollectionReview,
			"display_json": string(displayJSON),
		},
	}, nil
}

func buildTimetable(raw json.RawMessage) (Document, error) {
	var rec TimetableRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Document{}, fmt.Errorf("decode timetable record: %w: %w", domain.ErrMalformedRecord, err)
	}
	d := rec.DisplayInfo
	if d.TitleMain == "" {
		return Document{}, fmt.Errorf("timetable record without title: %w", domain.ErrMalformedRecord)
	}

	// The UI needs the complete course spec (schedule, prices); it rides
	// along as a single serialized metadata field.
	fullJSON, err := compact(raw)
	if err != nil {
		return Document{}, fmt.Errorf("compact timetable record: %w", err)
	}

	return Document{
		SourceID: orUnknown(rec.Meta.DocID),
		Text:     fmt.Sprintf("%s - %s", d.TitleMain, d.TitleSub),
		NounText: d.TitleMain + " " + d.TitleSub,
		Tags:     rec.SearchKeywords,
		Metadata: map[string]any{
			"day":       "Unknown",
			"level":     "Unknown",
			"full_json": fullJSON,
			"source":    domain.CollectionTimetable,
		},
	}, nil
}

func orUnknown(s string) string {
	return orDefault(s, "unknown")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func compact(raw json.RawMessage) (string, error) {
	var buf strings.Builder
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func isObject(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
