package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

func exportRecord() models.SurveyRecord {
	r := models.NewSurveyRecord()
	r.LastName = "Reyes"
	r.FirstName = "Ana"
	r.MiddleName = "Lim"
	r.BirthDate = "1999-03-07"
	r.Age = "26"
	r.Gender = "female"
	r.HomeAddress = "Mati City"
	r.Email = "ana@example.com"
	r.JobDifficulties = []string{"Location", "Skills Mismatch"}
	r.EmploymentRecords = []models.EmploymentRecord{
		{CompanyName: "Acme", PositionAndStatus: "Developer, regular", DateEmployed: "2024-08"},
	}
	r.HasOwnBusiness = "yes"
	r.SelfEmployment = models.SelfEmployment{BusinessName: "Sari-sari", NatureOfBusiness: "Retail"}
	r.ImprovementSuggestions = "more OJT hours"
	return r
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := New().WriteHTML(&buf, exportRecord(), "http://h/a.png"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"Ana Lim Reyes",
		`src="http://h/a.png"`,
		"Mati City",
		"Location, Skills Mismatch",
		"Acme",
		"Sari-sari",
		"more OJT hours",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q", want)
		}
	}
}

func TestWriteHTMLWithoutAvatarOrBusiness(t *testing.T) {
	rec := exportRecord()
	rec.HasOwnBusiness = "no"

	var buf bytes.Buffer
	if err := New().WriteHTML(&buf, rec, ""); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// The stylesheet always mentions .export-avatar; only the img tag
	// tells whether the block actually rendered.
	if strings.Contains(out, `class="export-avatar"`) || strings.Contains(out, "<img") {
		t.Fatal("avatar block rendered without a URL")
	}
	if strings.Contains(out, "Self-employment") {
		t.Fatal("business block rendered for has_own_business=no")
	}
}

func TestWriteHTMLEscapesValues(t *testing.T) {
	rec := exportRecord()
	rec.HomeAddress = `<script>alert(1)</script>`

	var buf bytes.Buffer
	if err := New().WriteHTML(&buf, rec, ""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<script>alert(1)</script>") {
		t.Fatal("value not escaped")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := New().WriteCSV(&buf, exportRecord()); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if len(rows[0]) != len(CSVHeader) || len(rows[1]) != len(CSVHeader) {
		t.Fatalf("column counts: header=%d row=%d", len(rows[0]), len(rows[1]))
	}

	byName := map[string]string{}
	for i, name := range rows[0] {
		byName[name] = rows[1][i]
	}
	if byName["last_name"] != "Reyes" || byName["business_name"] != "Sari-sari" {
		t.Fatalf("row content: %v", byName)
	}
	if byName["job_difficulties"] != "Location; Skills Mismatch" {
		t.Fatalf("difficulties: %q", byName["job_difficulties"])
	}
}
