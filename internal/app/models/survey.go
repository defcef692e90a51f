package models

// SurveyRecord is the in-memory (UI format) shape of one tracer survey
// response. The wire format decomposes BirthDate into year/month/day and
// uses snake_case keys; mapping lives in the dto package.
type SurveyRecord struct {
	// ID is server-assigned and zero until the first successful create.
	ID int64
	// AlumniID links the survey to the owning account when known.
	AlumniID int64

	LastName      string `validate:"required"`
	FirstName     string `validate:"required"`
	MiddleName    string `validate:"required"`
	YearGraduated string
	CourseProgram string
	StudentNumber string
	// BirthDate is the composed YYYY-MM-DD value.
	BirthDate string `validate:"required,datetime=2006-01-02"`
	Age       string `validate:"required,number"`
	Gender    string `validate:"required,oneof=male female"`

	HomeAddress     string `validate:"required"`
	TelephoneNumber string
	MobileNumber    string
	Email           string `validate:"required,email"`

	CurrentJobPosition       string
	CompanyAffiliation       string
	CompanyAddress           string
	ApproximateMonthlySalary string
	EmployedAfterGraduation  string

	JobDifficulties   []string
	EmploymentSource  string
	EmploymentRecords []EmploymentRecord

	JobsRelatedToExperience string
	// ImprovementSuggestions is only meaningful when JobsRelatedToExperience
	// is "no", but it is always carried and always submitted so a value
	// survives toggling the governing answer.
	ImprovementSuggestions string
	HasBeenPromoted        string
	WorkPerformanceRating  string

	HasOwnBusiness string
	SelfEmployment SelfEmployment
}

// EmploymentRecord is one row of the employment history table.
type EmploymentRecord struct {
	CompanyName        string
	DateEmployed       string
	PositionAndStatus  string
	MonthlySalaryRange string
}

// SelfEmployment describes the respondent's own business, gated by
// SurveyRecord.HasOwnBusiness.
type SelfEmployment struct {
	BusinessName     string
	NatureOfBusiness string
	RoleInBusiness   string
	MonthlyProfit    string
	BusinessAddress  string
	BusinessPhone    string
}

// NewSurveyRecord returns the fixed empty record the form starts from.
func NewSurveyRecord() SurveyRecord {
	return SurveyRecord{
		YearGraduated:     "2025",
		Gender:            "male",
		JobDifficulties:   []string{},
		EmploymentRecords: []EmploymentRecord{},
	}
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the list-typed fields.
func (r SurveyRecord) Clone() SurveyRecord {
	out := r
	out.JobDifficulties = append([]string{}, r.JobDifficulties...)
	out.EmploymentRecords = append([]EmploymentRecord{}, r.EmploymentRecords...)
	return out
}

// MonthlySalaryRanges are the salary band choices offered by the form.
var MonthlySalaryRanges = []string{
	"Below 10,000",
	"10,000-15,000",
	"15,001-20,000",
	"20,001-25,000",
	"Above 25,000",
}

// JobDifficultyOptions are the free-choice difficulty answers.
var JobDifficultyOptions = []string{
	"Lack of Experience",
	"Skills Mismatch",
	"Networking/Connections",
	"Location",
	"Others",
}

// EmploymentSources are the first-employment source choices.
var EmploymentSources = []string{
	"DOrSU Job Fair",
	"Academic Department/Faculty Referral",
	"Guidance Placement Referral",
	"OJT site",
	"Classified Ads (Printed/Electronic)",
	"Walk-in Application",
	"Family and Friends Referral",
}

// WorkPerformanceRatings is the superior-evaluation scale.
var WorkPerformanceRatings = []string{
	"Exemplary",
	"Proficient",
	"Needs Improvement",
	"Unsatisfactory",
}
