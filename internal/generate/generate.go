// Package generate produces job specifications and interview questions.
// The only implementation, Canned, returns fixed template text.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gobeaver/specscribe"
)

// Template is a job specification starting point offered to the user.
type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var templates = []Template{
	{ID: "software-engineer", Name: "Software Engineer"},
	{ID: "data-analyst", Name: "Data Analyst"},
	{ID: "project-manager", Name: "Project Manager"},
	{ID: "hr-specialist", Name: "HR Specialist"},
	{ID: "financial-analyst", Name: "Financial Analyst"},
}

// Templates returns the available job specification templates.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate finds a template by id.
func LookupTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// Experience levels accepted in JobSpecRequest.ExperienceLevel.
const (
	LevelEntry  = "entry"
	LevelMid    = "mid"
	LevelSenior = "senior"
	LevelExpert = "expert"
)

var levelYears = map[string]string{
	LevelEntry:  "0-2",
	LevelMid:    "3-5",
	LevelSenior: "5-8",
	LevelExpert: "8+",
}

// JobSpecRequest describes the job specification to generate.
type JobSpecRequest struct {
	TemplateID      string `json:"template_id"`
	JobTitle        string `json:"job_title"`
	JobDescription  string `json:"job_description"`
	ExperienceLevel string `json:"experience_level"`
	AdditionalInfo  string `json:"additional_info,omitempty"`
}

// Validate checks the request has a known template and a job title.
func (r JobSpecRequest) Validate() error {
	if strings.TrimSpace(r.TemplateID) == "" || strings.TrimSpace(r.JobTitle) == "" {
		return ErrMissingInformation
	}
	if _, ok := LookupTemplate(r.TemplateID); !ok {
		return &Error{
			Title:       "Unknown template",
			Description: fmt.Sprintf("Template %q does not exist.", r.TemplateID),
		}
	}
	return nil
}

// InterviewRequest carries the material interview questions are based on.
type InterviewRequest struct {
	JobSpec           string `json:"job_spec,omitempty"`
	CVContent         string `json:"cv_content,omitempty"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// Validate checks at least one of the job spec or CV is present.
func (r InterviewRequest) Validate() error {
	if strings.TrimSpace(r.JobSpec) == "" && strings.TrimSpace(r.CVContent) == "" {
		return ErrMissingDocuments
	}
	return nil
}

// Error is a request the generator refuses. Title and Description are
// written for the user.
type Error struct {
	Title       string
	Description string
}

func (e *Error) Error() string {
	return strings.ToLower(e.Title) + ": " + e.Description
}

var (
	// ErrMissingInformation is returned when a job spec request lacks a
	// template or a job title.
	ErrMissingInformation = &Error{
		Title:       "Missing information",
		Description: "Please select a template and provide a job title.",
	}

	// ErrMissingDocuments is returned when an interview request has
	// neither a job spec nor a CV.
	ErrMissingDocuments = &Error{
		Title:       "Missing Documents",
		Description: "Please upload either a job specification or a CV to continue.",
	}
)

// AsError reports whether err is a generation refusal and returns it.
func AsError(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// Generator produces documents from user input.
type Generator interface {
	JobSpec(ctx context.Context, req JobSpecRequest) (string, error)
	InterviewQuestions(ctx context.Context, req InterviewRequest) ([]string, error)
}

// Canned returns fixed content shaped by the request. It never calls out.
type Canned struct{}

// NewCanned creates a canned generator.
func NewCanned() *Canned {
	return &Canned{}
}

// JobSpec implements Generator.
func (Canned) JobSpec(ctx context.Context, req JobSpecRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	years, ok := levelYears[req.ExperienceLevel]
	if !ok {
		years = "5+"
	}

	additional := strings.TrimSpace(req.AdditionalInfo)
	if additional == "" {
		additional = "This position offers competitive benefits and growth opportunities."
	}

	title := strings.TrimSpace(req.JobTitle)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s - Job Specification\n\n", title)
	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "We are looking for an experienced %s to join our team. ", title)
	b.WriteString("This role requires a combination of technical expertise and business acumen.\n\n")
	if desc := strings.TrimSpace(req.JobDescription); desc != "" {
		b.WriteString(desc + "\n\n")
	}
	b.WriteString("## Responsibilities\n")
	b.WriteString("- Lead development of complex systems\n")
	b.WriteString("- Collaborate with cross-functional teams\n")
	b.WriteString("- Participate in code reviews and technical decisions\n\n")
	b.WriteString("## Requirements\n")
	fmt.Fprintf(&b, "- %s years of relevant experience\n", years)
	b.WriteString("- Strong technical background\n")
	b.WriteString("- Excellent communication skills\n\n")
	b.WriteString("## Additional Information\n")
	b.WriteString(additional + "\n")

	return b.String(), nil
}

var cannedQuestions = []string{
	"Tell me about your experience with Python and data analysis tools, particularly in financial contexts.",
	"How would you approach optimizing a database query that's taking too long to execute?",
	"Describe a situation where you had to meet a tight deadline for a project. How did you manage it?",
	"What metrics would you use to track the success of an investment portfolio application?",
	"How do you stay updated with the latest developments in financial technology?",
	"Tell me about a complex problem you solved and the approach you took.",
	"How do you ensure compliance with financial regulations in your software development?",
	"Describe your experience working in Agile environments.",
	"How would you handle conflicting priorities from different stakeholders?",
	"What's your approach to testing and quality assurance?",
}

// InterviewQuestions implements Generator.
func (Canned) InterviewQuestions(ctx context.Context, req InterviewRequest) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	out := make([]string, len(cannedQuestions))
	copy(out, cannedQuestions)
	return out, nil
}

// Extract returns the text content of a staged document. Parsing is not
// implemented: job specs get a fixed outline titled after the file name and
// other kinds get a placeholder line.
func Extract(doc specscribe.StagedDocument) string {
	if doc.Kind != specscribe.KindJobSpec {
		return fmt.Sprintf("Extracted content from %s will appear here once document parsing is available.", doc.Name)
	}

	title := strings.NewReplacer(".pdf", "", ".docx", "").Replace(doc.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("## Uploaded Job Specification\n")
	b.WriteString("This content represents the parsed job specification from your uploaded file.\n\n")
	b.WriteString("## Position Summary\n")
	b.WriteString("Responsible for delivering high-quality solutions while maintaining professional standards.\n\n")
	b.WriteString("## Key Responsibilities\n")
	b.WriteString("- Design and develop solutions\n")
	b.WriteString("- Test and implement applications\n")
	b.WriteString("- Collaborate with stakeholders\n\n")
	b.WriteString("## Required Skills\n")
	b.WriteString("- Relevant technical expertise\n")
	b.WriteString("- Problem-solving abilities\n")
	b.WriteString("- Teamwork and communication skills")
	return b.String()
}

var _ Generator = Canned{}
