package formstate

import (
	"fmt"
	"sync"

	"github.com/dorsu/alumnitracer/internal/app/models"
	"github.com/dorsu/alumnitracer/internal/pkg/apperrors"
)

// Store holds exactly one in-progress survey record as mutable form state.
// Field writes perform no validation; validation is deferred to submit
// time so partially filled forms are always representable.
type Store struct {
	mu      sync.Mutex
	current models.SurveyRecord
}

// New returns a store holding the fixed empty record.
func New() *Store {
	return &Store{current: models.NewSurveyRecord()}
}

// Set replaces one field, addressed by its form name. Unknown names and
// mismatched value types are errors; values themselves are not validated.
func (s *Store) Set(field string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch field {
	case "lastName":
		return setString(&s.current.LastName, field, value)
	case "firstName":
		return setString(&s.current.FirstName, field, value)
	case "middleName":
		return setString(&s.current.MiddleName, field, value)
	case "yearGraduated":
		return setString(&s.current.YearGraduated, field, value)
	case "courseProgram":
		return setString(&s.current.CourseProgram, field, value)
	case "studentNumber":
		return setString(&s.current.StudentNumber, field, value)
	case "birthDate":
		return setString(&s.current.BirthDate, field, value)
	case "age":
		return setString(&s.current.Age, field, value)
	case "gender":
		return setString(&s.current.Gender, field, value)
	case "homeAddress":
		return setString(&s.current.HomeAddress, field, value)
	case "telephoneNumber":
		return setString(&s.current.TelephoneNumber, field, value)
	case "mobileNumber":
		return setString(&s.current.MobileNumber, field, value)
	case "email":
		return setString(&s.current.Email, field, value)
	case "currentJobPosition":
		return setString(&s.current.CurrentJobPosition, field, value)
	case "companyAffiliation":
		return setString(&s.current.CompanyAffiliation, field, value)
	case "companyAddress":
		return setString(&s.current.CompanyAddress, field, value)
	case "approximateMonthlySalary":
		return setString(&s.current.ApproximateMonthlySalary, field, value)
	case "employedAfterGraduation":
		return setString(&s.current.EmployedAfterGraduation, field, value)
	case "employmentSource":
		return setString(&s.current.EmploymentSource, field, value)
	case "jobsRelatedToExperience":
		return setString(&s.current.JobsRelatedToExperience, field, value)
	case "improvementSuggestions":
		return setString(&s.current.ImprovementSuggestions, field, value)
	case "hasBeenPromoted":
		return setString(&s.current.HasBeenPromoted, field, value)
	case "workPerformanceRating":
		return setString(&s.current.WorkPerformanceRating, field, value)
	case "hasOwnBusiness":
		return setString(&s.current.HasOwnBusiness, field, value)
	case "jobDifficulties":
		v, ok := value.([]string)
		if !ok {
			return typeError(field, "[]string", value)
		}
		s.current.JobDifficulties = append([]string{}, v...)
		return nil
	case "employmentRecords":
		v, ok := value.([]models.EmploymentRecord)
		if !ok {
			return typeError(field, "[]models.EmploymentRecord", value)
		}
		s.current.EmploymentRecords = append([]models.EmploymentRecord{}, v...)
		return nil
	case "selfEmployment":
		v, ok := value.(models.SelfEmployment)
		if !ok {
			return typeError(field, "models.SelfEmployment", value)
		}
		s.current.SelfEmployment = v
		return nil
	default:
		return apperrors.NewCustomError(apperrors.ErrUnknownField, fmt.Sprintf("unknown survey field %q", field))
	}
}

// ReplaceAll swaps the whole record, used when loading an existing
// submission. Callers pass records already mapped from the wire format;
// replaying the same record leaves the store unchanged.
func (s *Store) ReplaceAll(rec models.SurveyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = rec.Clone()
	if s.current.JobDifficulties == nil {
		s.current.JobDifficulties = []string{}
	}
	if s.current.EmploymentRecords == nil {
		s.current.EmploymentRecords = []models.EmploymentRecord{}
	}
}

// Reset restores the fixed empty record.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.NewSurveyRecord()
}

// Snapshot returns a deep copy of the current record.
func (s *Store) Snapshot() models.SurveyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

func setString(dst *string, field string, value interface{}) error {
	v, ok := value.(string)
	if !ok {
		return typeError(field, "string", value)
	}
	*dst = v
	return nil
}

func typeError(field, want string, got interface{}) error {
	return apperrors.NewCustomError(apperrors.ErrBadRequest,
		fmt.Sprintf("field %q expects %s, got %T", field, want, got))
}
