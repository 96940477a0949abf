package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cast"

	"scholar-graph/apierr"
)

// ScholarRecord ist ein gescrapter Scholar-Datensatz, wie ihn der Crawler
// als JSON ablegt.
type ScholarRecord struct {
	ScholarID     string             `json:"scholar_id"`
	Name          string             `json:"name"`
	Affiliation   string             `json:"affiliation"`
	EmailDomain   string             `json:"email_domain"`
	Homepage      string             `json:"homepage"`
	URLPicture    string             `json:"url_picture"`
	CitedBy       FlexInt            `json:"citedby"`
	CitedBy5y     FlexInt            `json:"citedby5y"`
	HIndex        FlexInt            `json:"hindex"`
	HIndex5y      FlexInt            `json:"hindex5y"`
	I10Index      FlexInt            `json:"i10index"`
	I10Index5y    FlexInt            `json:"i10index5y"`
	CitesPerYear  map[string]FlexInt `json:"cites_per_year"`
	Interests     []string           `json:"interests"`
	Source        string             `json:"source"`
	Filled        any                `json:"filled"`
	ContainerType string             `json:"container_type"`

	Publications []PublicationRecord `json:"publications"`
	Coauthors    []CoauthorRecord    `json:"coauthors"`
	Institutions []InstitutionRecord `json:"institutions"`
}

type PublicationRecord struct {
	Bib          BibRecord  `json:"bib"`
	CitesID      StringList `json:"cites_id"`
	ClusterID    FlexString `json:"cluster_id"`
	AuthorPubID  string     `json:"author_pub_id"`
	NumCitations FlexInt    `json:"num_citations"`
	CitedBy      FlexInt    `json:"citedby"`
	CitedByURL   string     `json:"citedby_url"`
}

type BibRecord struct {
	Title    string     `json:"title"`
	PubYear  FlexInt    `json:"pub_year"`
	Year     FlexInt    `json:"year"`
	Citation string     `json:"citation"`
	Venue    string     `json:"venue"`
	Author   StringList `json:"author"`
}

type CoauthorRecord struct {
	ScholarID        string  `json:"scholar_id"`
	Name             string  `json:"name"`
	Affiliation      string  `json:"affiliation"`
	CoAuthoredPapers FlexInt `json:"co_authored_papers"`
}

type InstitutionRecord struct {
	ID        string   `json:"inst_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	URL       string   `json:"url"`
	Lab       string   `json:"lab"`
	Country   string   `json:"country"`
	Region    string   `json:"region"`
	StartYear *FlexInt `json:"start_year"`
	EndYear   *FlexInt `json:"end_year"`
	IsCurrent *bool    `json:"is_current"`
}

// FlexInt akzeptiert Zahlen, numerische Strings, "" und null.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	if v == nil || v == "" {
		*f = 0
		return nil
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return fmt.Errorf("invalid integer %s: %w", b, err)
	}
	*f = FlexInt(n)
	return nil
}

// FlexString akzeptiert Strings und Zahlen.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*f = ""
		return nil
	}
	if n, ok := v.(float64); ok {
		*f = FlexString(cast.ToString(int64(n)))
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("invalid string %s: %w", b, err)
	}
	*f = FlexString(s)
	return nil
}

// StringList akzeptiert eine Liste oder einen einzelnen Wert. Ein einzelner
// Autoren-String wie "A and B" wird an " and " getrennt.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*l = nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item == nil {
				continue
			}
			if n, ok := item.(float64); ok {
				out = append(out, cast.ToString(int64(n)))
				continue
			}
			s, err := cast.ToStringE(item)
			if err != nil {
				return fmt.Errorf("invalid list item %v: %w", item, err)
			}
			out = append(out, s)
		}
		*l = out
	case string:
		var out []string
		for _, part := range strings.Split(t, " and ") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
	case float64:
		*l = []string{cast.ToString(int64(t))}
	default:
		return fmt.Errorf("invalid list %s", b)
	}
	return nil
}

// DecodeRecord liest einen Datensatz und prüft die Pflichtfelder.
func DecodeRecord(r io.Reader) (*ScholarRecord, error) {
	var rec ScholarRecord
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, apierr.Validation("services.DecodeRecord", fmt.Errorf("decode scholar record: %w", err))
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ScholarRecord) Validate() error {
	if strings.TrimSpace(r.ScholarID) == "" {
		return apierr.Validation("services.ScholarRecord", errors.New("scholar_id is required"))
	}
	return nil
}

// EffectiveYear liefert pub_year, sonst year.
func (b BibRecord) EffectiveYear() int {
	if b.PubYear > 0 {
		return int(b.PubYear)
	}
	return int(b.Year)
}

// CitationText formatiert Autoren, Titel, Venue und Jahr.
func (b BibRecord) CitationText() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(b.Author, ", "))
	fmt.Fprintf(&sb, ". %q. ", b.Title)
	if b.Venue != "" {
		sb.WriteString(b.Venue)
		sb.WriteString(", ")
	}
	if y := b.EffectiveYear(); y > 0 {
		fmt.Fprintf(&sb, "%d", y)
	}
	return strings.TrimSpace(sb.String())
}
