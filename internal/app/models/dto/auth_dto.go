package dto

import "strconv"

// LoginRequest is the credential payload for /api/auth/login/.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued bearer token and the account record.
type LoginResponse struct {
	Token string      `json:"token"`
	User  ProfileWire `json:"user"`
}

// ProfileUpdate is a partial profile change set for PATCH requests. Nil
// fields are left untouched server-side.
type ProfileUpdate struct {
	Username      *string `json:"username,omitempty"`
	Email         *string `json:"email,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
	ProgramCourse *string `json:"program_course,omitempty"`
	YearGraduated *int    `json:"year_graduated,omitempty"`
}

// Fields returns the non-nil changes as form fields, used when the update
// travels as multipart because an image file accompanies it.
func (u ProfileUpdate) Fields() map[string]string {
	out := map[string]string{}
	if u.Username != nil {
		out["username"] = *u.Username
	}
	if u.Email != nil {
		out["email"] = *u.Email
	}
	if u.FullName != nil {
		out["full_name"] = *u.FullName
	}
	if u.ProgramCourse != nil {
		out["program_course"] = *u.ProgramCourse
	}
	if u.YearGraduated != nil {
		out["year_graduated"] = strconv.Itoa(*u.YearGraduated)
	}
	return out
}
