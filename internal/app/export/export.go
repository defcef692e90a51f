package export

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

// Exporter renders a submitted survey into shareable documents: a
// printable HTML page, and a flat CSV row for spreadsheet use.
type Exporter struct {
	tmpl *template.Template
}

// New creates an exporter.
func New() *Exporter {
	return &Exporter{tmpl: template.Must(template.New("survey").Parse(surveyTemplate))}
}

type templateData struct {
	Name      string
	AvatarURL string
	Fields    []fieldValue
	History   []models.EmploymentRecord
	Business  *models.SelfEmployment
	Notes     string
}

type fieldValue struct {
	Label string
	Value string
}

// WriteHTML renders the printable document. avatarURL may be empty.
func (e *Exporter) WriteHTML(w io.Writer, rec models.SurveyRecord, avatarURL string) error {
	data := templateData{
		Name:      strings.TrimSpace(strings.Join(nonEmpty(rec.FirstName, rec.MiddleName, rec.LastName), " ")),
		AvatarURL: avatarURL,
		Fields: []fieldValue{
			{"Year graduated", orDash(rec.YearGraduated)},
			{"Program / Course", orDash(rec.CourseProgram)},
			{"Student number", orDash(rec.StudentNumber)},
			{"Birth date", orDash(rec.BirthDate)},
			{"Age", orDash(rec.Age)},
			{"Gender", orDash(rec.Gender)},
			{"Home address", orDash(rec.HomeAddress)},
			{"Telephone number", orDash(rec.TelephoneNumber)},
			{"Mobile number", orDash(rec.MobileNumber)},
			{"Email", orDash(rec.Email)},
			{"Current job position", orDash(rec.CurrentJobPosition)},
			{"Company affiliation", orDash(rec.CompanyAffiliation)},
			{"Company address", orDash(rec.CompanyAddress)},
			{"Approx. monthly salary", orDash(rec.ApproximateMonthlySalary)},
			{"Employed within 6 months", orDash(rec.EmployedAfterGraduation)},
			{"First-job difficulties", orDash(strings.Join(rec.JobDifficulties, ", "))},
			{"Employment source", orDash(rec.EmploymentSource)},
			{"Jobs related to experience", orDash(rec.JobsRelatedToExperience)},
			{"Has been promoted", orDash(rec.HasBeenPromoted)},
			{"Work performance rating", orDash(rec.WorkPerformanceRating)},
		},
		History: rec.EmploymentRecords,
		Notes:   rec.ImprovementSuggestions,
	}
	if rec.HasOwnBusiness == "yes" {
		biz := rec.SelfEmployment
		data.Business = &biz
	}
	return e.tmpl.Execute(w, data)
}

// CSVHeader is the column order produced by WriteCSV.
var CSVHeader = []string{
	"last_name", "first_name", "middle_name", "year_graduated", "course_program",
	"student_number", "birth_date", "age", "gender", "home_address",
	"telephone_number", "mobile_number", "email", "current_job_position",
	"company_affiliation", "company_address", "approximate_monthly_salary",
	"employed_after_graduation", "job_difficulties", "employment_source",
	"jobs_related_to_experience", "improvement_suggestions", "has_been_promoted",
	"work_performance_rating", "has_own_business", "business_name",
}

// WriteCSV writes a header row followed by one record row.
func (e *Exporter) WriteCSV(w io.Writer, rec models.SurveyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	row := []string{
		rec.LastName, rec.FirstName, rec.MiddleName, rec.YearGraduated, rec.CourseProgram,
		rec.StudentNumber, rec.BirthDate, rec.Age, rec.Gender, rec.HomeAddress,
		rec.TelephoneNumber, rec.MobileNumber, rec.Email, rec.CurrentJobPosition,
		rec.CompanyAffiliation, rec.CompanyAddress, rec.ApproximateMonthlySalary,
		rec.EmployedAfterGraduation, strings.Join(rec.JobDifficulties, "; "), rec.EmploymentSource,
		rec.JobsRelatedToExperience, rec.ImprovementSuggestions, rec.HasBeenPromoted,
		rec.WorkPerformanceRating, rec.HasOwnBusiness, rec.SelfEmployment.BusinessName,
	}
	if err := cw.Write(row); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

const surveyTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Alumni Tracer Survey</title>
<style>
  body { font-family: Inter, Arial, sans-serif; color: #111827; background: #fff; }
  .export-container { max-width: 900px; margin: 12px auto; padding: 12px; }
  .export-header { display: flex; gap: 10px; align-items: center; margin-bottom: 6px; }
  .export-avatar { width: 56px; height: 56px; border-radius: 6px; object-fit: cover; border: 1px solid #e6eefb; }
  .export-title { font-size: 15px; font-weight: 700; color: #0f172a; }
  .export-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 6px; margin-top: 6px; }
  .field-label { font-size: 10px; color: #6b7280; margin-bottom: 2px; }
  .field-value { font-size: 12px; color: #0f172a; line-height: 1.1; }
  .section { margin-top: 6px; font-size: 12px; }
  .notes { white-space: pre-wrap; font-size: 12px; }
  hr { border: none; border-top: 1px solid #e6eefb; margin: 10px 0; }
  @page { size: auto; margin: 9mm; }
</style>
</head>
<body>
<div class="export-container">
  <div class="export-header">
    {{if .AvatarURL}}<img src="{{.AvatarURL}}" alt="avatar" class="export-avatar"/>{{end}}
    {{if .Name}}<div class="export-title">{{.Name}}</div>{{end}}
  </div>
  <hr/>
  <div class="export-grid">
    {{range .Fields}}
    <div>
      <div class="field-label">{{.Label}}</div>
      <div class="field-value">{{.Value}}</div>
    </div>
    {{end}}
  </div>
  {{if .History}}
  <div class="section">
    <div class="field-label">Employment history</div>
    <ul>
      {{range .History}}<li>{{.CompanyName}} - {{.PositionAndStatus}}{{if .DateEmployed}} ({{.DateEmployed}}){{end}}</li>{{end}}
    </ul>
  </div>
  {{end}}
  {{if .Business}}
  <div class="section">
    <div class="field-label">Self-employment</div>
    <div class="field-value">{{.Business.BusinessName}} - {{.Business.NatureOfBusiness}}</div>
    {{if .Business.RoleInBusiness}}<div class="field-value">Role: {{.Business.RoleInBusiness}}</div>{{end}}
    {{if .Business.MonthlyProfit}}<div class="field-value">Profit: {{.Business.MonthlyProfit}}</div>{{end}}
  </div>
  {{end}}
  {{if .Notes}}
  <div class="section">
    <div class="field-label">Improvement suggestions / additional notes</div>
    <div class="notes">{{.Notes}}</div>
  </div>
  {{end}}
</div>
</body>
</html>
`
