package dto

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

func sampleRecord() models.SurveyRecord {
	r := models.NewSurveyRecord()
	r.LastName = "Reyes"
	r.FirstName = "Ana"
	r.MiddleName = "Lim"
	r.BirthDate = "1999-03-07"
	r.Age = "26"
	r.Gender = "female"
	r.HomeAddress = "Mati City"
	r.Email = "ana@example.com"
	r.JobDifficulties = []string{"Skills Mismatch"}
	r.ImprovementSuggestions = "more OJT hours"
	r.JobsRelatedToExperience = "yes"
	return r
}

func TestSurveyToWireSplitsBirthDate(t *testing.T) {
	w := SurveyToWire(sampleRecord())

	if w.BirthYear != "1999" || w.BirthMonth != "03" || w.BirthDay != "07" {
		t.Fatalf("birth date split into %q-%q-%q", w.BirthYear, w.BirthMonth, w.BirthDay)
	}
	if w.Age == nil || *w.Age != 26 {
		t.Fatalf("age not carried as number: %v", w.Age)
	}
}

func TestSurveyFromWirePadsDateComponents(t *testing.T) {
	w := SurveyWire{BirthYear: "1999", BirthMonth: "3", BirthDay: "7"}
	r := SurveyFromWire(w)
	if r.BirthDate != "1999-03-07" {
		t.Fatalf("got birth date %q", r.BirthDate)
	}
}

func TestSurveyFromWirePartialDateStaysEmpty(t *testing.T) {
	w := SurveyWire{BirthYear: "1999", BirthMonth: "3"}
	r := SurveyFromWire(w)
	if r.BirthDate != "" {
		t.Fatalf("partial date composed to %q", r.BirthDate)
	}
}

func TestSurveyRoundTripPreservesConditionalFields(t *testing.T) {
	rec := sampleRecord()
	// Suggestions belong to the "no" branch but the value must survive a
	// round trip regardless of the governing answer.
	rec.JobsRelatedToExperience = "yes"
	rec.ImprovementSuggestions = "keep this"

	got := SurveyFromWire(SurveyToWire(rec))
	if got.ImprovementSuggestions != "keep this" {
		t.Fatalf("suggestions lost: %q", got.ImprovementSuggestions)
	}
}

func TestSurveyFromWireDerivesOwnBusinessFromList(t *testing.T) {
	tests := []struct {
		name string
		wire SurveyWire
		want string
	}{
		{"with entries", SurveyWire{SelfEmployment: []SelfEmploymentWire{{BusinessName: "Sari-sari"}}}, "yes"},
		{"flag set but list empty", SurveyWire{HasOwnBusiness: true}, "no"},
		{"neither", SurveyWire{}, "no"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SurveyFromWire(tt.wire)
			if r.HasOwnBusiness != tt.want {
				t.Fatalf("got %q, want %q", r.HasOwnBusiness, tt.want)
			}
		})
	}
}

func TestSurveyFromWireIsIdempotent(t *testing.T) {
	w := SurveyToWire(sampleRecord())
	first := SurveyFromWire(w)
	second := SurveyFromWire(w)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("mapping the same wire record twice diverged")
	}
}

func TestSurveyFromWireDefaults(t *testing.T) {
	r := SurveyFromWire(SurveyWire{})
	if r.Gender != "male" {
		t.Fatalf("gender default: %q", r.Gender)
	}
	if r.JobDifficulties == nil || r.EmploymentRecords == nil {
		t.Fatal("list fields must be non-nil")
	}
}

func TestDecodeSurveyList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id": 1}, {"id": 2}]`, 2},
		{"paginated envelope", `{"count": 1, "results": [{"id": 7}]}`, 1},
		{"empty envelope", `{"results": []}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := DecodeSurveyList([]byte(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != tt.want {
				t.Fatalf("got %d surveys, want %d", len(list), tt.want)
			}
		})
	}
}

func TestSurveyWireToleratesScalarDifficulties(t *testing.T) {
	var w SurveyWire
	if err := json.Unmarshal([]byte(`{"job_difficulties": "Location"}`), &w); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual([]string(w.JobDifficulties), []string{"Location"}) {
		t.Fatalf("got %v", w.JobDifficulties)
	}
}

func TestSurveyWireToleratesNumericBirthComponents(t *testing.T) {
	var w SurveyWire
	if err := json.Unmarshal([]byte(`{"birth_year": 1999, "birth_month": "3", "birth_day": null}`), &w); err != nil {
		t.Fatal(err)
	}
	if w.BirthYear != "1999" || w.BirthMonth != "3" || w.BirthDay != "" {
		t.Fatalf("got %q/%q/%q", w.BirthYear, w.BirthMonth, w.BirthDay)
	}
}
