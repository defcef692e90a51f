package dto

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

// SurveyWire is the JSON shape exchanged with the tracer API for one
// survey. Keys are snake_case and the birth date travels decomposed.
type SurveyWire struct {
	ID     int64  `json:"id,omitempty"`
	Alumni *int64 `json:"alumni,omitempty"`

	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	YearGraduated string `json:"year_graduated"`
	CourseProgram string `json:"course_program"`
	StudentNumber string `json:"student_number"`

	BirthYear  FlexString `json:"birth_year"`
	BirthMonth FlexString `json:"birth_month"`
	BirthDay   FlexString `json:"birth_day"`
	Age        *int       `json:"age"`
	Gender     string     `json:"gender"`

	HomeAddress     string `json:"home_address"`
	TelephoneNumber string `json:"telephone_number"`
	MobileNumber    string `json:"mobile_number"`
	Email           string `json:"email"`

	CurrentJobPosition       string `json:"current_job_position"`
	CompanyAffiliation       string `json:"company_affiliation"`
	CompanyAddress           string `json:"company_address"`
	ApproximateMonthlySalary string `json:"approximate_monthly_salary"`
	EmployedAfterGraduation  string `json:"employed_after_graduation"`

	JobDifficulties   FlexStringList         `json:"job_difficulties"`
	EmploymentSource  string                 `json:"employment_source"`
	EmploymentRecords []EmploymentRecordWire `json:"employment_records,omitempty"`

	JobsRelatedToExperience string `json:"jobs_related_to_experience"`
	ImprovementSuggestions  string `json:"improvement_suggestions"`
	HasBeenPromoted         string `json:"has_been_promoted"`
	WorkPerformanceRating   string `json:"work_performance_rating"`

	HasOwnBusiness bool                 `json:"has_own_business"`
	SelfEmployment []SelfEmploymentWire `json:"self_employment,omitempty"`
}

// EmploymentRecordWire is one employment history row on the wire.
type EmploymentRecordWire struct {
	CompanyName        string `json:"company_name"`
	DateEmployed       string `json:"date_employed"`
	PositionAndStatus  string `json:"position_and_status"`
	MonthlySalaryRange string `json:"monthly_salary_range"`
}

// SelfEmploymentWire is the own-business block on the wire. The server
// models it as a list; only the first entry is meaningful.
type SelfEmploymentWire struct {
	BusinessName     string `json:"business_name"`
	NatureOfBusiness string `json:"nature_of_business"`
	RoleInBusiness   string `json:"role_in_business"`
	MonthlyProfit    string `json:"monthly_profit"`
	BusinessAddress  string `json:"business_address"`
	BusinessPhone    string `json:"business_phone"`
}

// SurveyToWire maps a UI-format record to the wire format. The conditional
// blocks (improvement suggestions, difficulties, self-employment) are always
// carried so a value entered behind a toggled-off answer is not dropped.
func SurveyToWire(r models.SurveyRecord) SurveyWire {
	w := SurveyWire{
		ID:                       r.ID,
		LastName:                 r.LastName,
		FirstName:                r.FirstName,
		MiddleName:               r.MiddleName,
		YearGraduated:            r.YearGraduated,
		CourseProgram:            r.CourseProgram,
		StudentNumber:            r.StudentNumber,
		Gender:                   r.Gender,
		HomeAddress:              r.HomeAddress,
		TelephoneNumber:          r.TelephoneNumber,
		MobileNumber:             r.MobileNumber,
		Email:                    r.Email,
		CurrentJobPosition:       r.CurrentJobPosition,
		CompanyAffiliation:       r.CompanyAffiliation,
		CompanyAddress:           r.CompanyAddress,
		ApproximateMonthlySalary: r.ApproximateMonthlySalary,
		EmployedAfterGraduation:  r.EmployedAfterGraduation,
		JobDifficulties:          FlexStringList(append([]string{}, r.JobDifficulties...)),
		EmploymentSource:         r.EmploymentSource,
		JobsRelatedToExperience:  r.JobsRelatedToExperience,
		ImprovementSuggestions:   r.ImprovementSuggestions,
		HasBeenPromoted:          r.HasBeenPromoted,
		WorkPerformanceRating:    r.WorkPerformanceRating,
		HasOwnBusiness:           r.HasOwnBusiness == "yes",
	}

	if r.AlumniID != 0 {
		id := r.AlumniID
		w.Alumni = &id
	}

	if parts := strings.Split(r.BirthDate, "-"); len(parts) == 3 {
		w.BirthYear = FlexString(parts[0])
		w.BirthMonth = FlexString(parts[1])
		w.BirthDay = FlexString(parts[2])
	}

	if r.Age != "" {
		var age int
		if _, err := fmt.Sscanf(r.Age, "%d", &age); err == nil {
			w.Age = &age
		}
	}

	for _, rec := range r.EmploymentRecords {
		w.EmploymentRecords = append(w.EmploymentRecords, EmploymentRecordWire{
			CompanyName:        rec.CompanyName,
			DateEmployed:       rec.DateEmployed,
			PositionAndStatus:  rec.PositionAndStatus,
			MonthlySalaryRange: rec.MonthlySalaryRange,
		})
	}

	se := r.SelfEmployment
	if se != (models.SelfEmployment{}) || r.HasOwnBusiness == "yes" {
		w.SelfEmployment = []SelfEmploymentWire{{
			BusinessName:     se.BusinessName,
			NatureOfBusiness: se.NatureOfBusiness,
			RoleInBusiness:   se.RoleInBusiness,
			MonthlyProfit:    se.MonthlyProfit,
			BusinessAddress:  se.BusinessAddress,
			BusinessPhone:    se.BusinessPhone,
		}}
	}

	return w
}

// SurveyFromWire maps a wire record into the UI format. The birth date is
// recomposed only when all three components are present; list fields are
// always non-nil. The mapping is pure, so applying it twice to the same
// wire record yields the same result.
func SurveyFromWire(w SurveyWire) models.SurveyRecord {
	r := models.SurveyRecord{
		ID:                       w.ID,
		LastName:                 w.LastName,
		FirstName:                w.FirstName,
		MiddleName:               w.MiddleName,
		YearGraduated:            w.YearGraduated,
		CourseProgram:            w.CourseProgram,
		StudentNumber:            w.StudentNumber,
		Gender:                   w.Gender,
		HomeAddress:              w.HomeAddress,
		TelephoneNumber:          w.TelephoneNumber,
		MobileNumber:             w.MobileNumber,
		Email:                    w.Email,
		CurrentJobPosition:       w.CurrentJobPosition,
		CompanyAffiliation:       w.CompanyAffiliation,
		CompanyAddress:           w.CompanyAddress,
		ApproximateMonthlySalary: w.ApproximateMonthlySalary,
		EmployedAfterGraduation:  w.EmployedAfterGraduation,
		JobDifficulties:          append([]string{}, w.JobDifficulties...),
		EmploymentSource:         w.EmploymentSource,
		EmploymentRecords:        []models.EmploymentRecord{},
		JobsRelatedToExperience:  w.JobsRelatedToExperience,
		ImprovementSuggestions:   w.ImprovementSuggestions,
		HasBeenPromoted:          w.HasBeenPromoted,
		WorkPerformanceRating:    w.WorkPerformanceRating,
	}

	if r.Gender == "" {
		r.Gender = "male"
	}

	if w.Alumni != nil {
		r.AlumniID = *w.Alumni
	}

	if w.BirthYear != "" && w.BirthMonth != "" && w.BirthDay != "" {
		r.BirthDate = fmt.Sprintf("%s-%s-%s",
			string(w.BirthYear), pad2(string(w.BirthMonth)), pad2(string(w.BirthDay)))
	}

	if w.Age != nil {
		r.Age = fmt.Sprintf("%d", *w.Age)
	}

	for _, rec := range w.EmploymentRecords {
		r.EmploymentRecords = append(r.EmploymentRecords, models.EmploymentRecord{
			CompanyName:        rec.CompanyName,
			DateEmployed:       rec.DateEmployed,
			PositionAndStatus:  rec.PositionAndStatus,
			MonthlySalaryRange: rec.MonthlySalaryRange,
		})
	}

	// The wire format signals own-business through the presence of
	// self_employment entries, not the boolean flag.
	if len(w.SelfEmployment) > 0 {
		se := w.SelfEmployment[0]
		r.SelfEmployment = models.SelfEmployment{
			BusinessName:     se.BusinessName,
			NatureOfBusiness: se.NatureOfBusiness,
			RoleInBusiness:   se.RoleInBusiness,
			MonthlyProfit:    se.MonthlyProfit,
			BusinessAddress:  se.BusinessAddress,
			BusinessPhone:    se.BusinessPhone,
		}
		r.HasOwnBusiness = "yes"
	} else {
		r.HasOwnBusiness = "no"
	}

	return r
}

// DecodeSurveyList decodes a list response that may arrive either as a bare
// JSON array or as a paginated {"results": [...]} envelope.
func DecodeSurveyList(data []byte) ([]SurveyWire, error) {
	var bare []SurveyWire
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	var paged struct {
		Results []SurveyWire `json:"results"`
	}
	if err := json.Unmarshal(data, &paged); err != nil {
		return nil, fmt.Errorf("unrecognized survey list shape: %w", err)
	}
	return paged.Results, nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
