package models

// Profile is the strict internal shape of an authenticated alumni account.
// The backend's wire shapes for this record are not contractually fixed
// (image may arrive as a bare string, a nested object, or under a nested
// profile/user envelope); dto.ProfileFromWire normalizes all of them into
// this type exactly once, at the system boundary.
type Profile struct {
	ID            int64
	Username      string
	Email         string
	FullName      string
	ProgramCourse string
	YearGraduated int

	// ImageURL is the primary avatar URL, always absolute after
	// normalization. Empty when the account has no image.
	ImageURL string

	// ImageCandidates holds every image-like value found on the wire
	// object in probe priority order, normalized to absolute URLs.
	// The avatar resolver works over this list instead of re-probing
	// loose JSON at every call site.
	ImageCandidates []string
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	out := p
	out.ImageCandidates = append([]string{}, p.ImageCandidates...)
	return out
}
