package dto

import (
	"encoding/json"
	"strings"

	"github.com/dorsu/alumnitracer/internal/app/models"
)

// ImageRef is an image reference whose wire shape is not guaranteed: it may
// be a bare string, a relative path, or a nested object carrying the URL
// under one of several common keys. One level of object nesting is resolved.
type ImageRef string

// UnmarshalJSON implements json.Unmarshaler.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*r = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = ImageRef(strings.TrimSpace(s))
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		for _, k := range []string{"url", "image", "src", "path"} {
			raw, ok := obj[k]
			if !ok {
				continue
			}
			var nested string
			if err := json.Unmarshal(raw, &nested); err == nil && strings.TrimSpace(nested) != "" {
				*r = ImageRef(strings.TrimSpace(nested))
				return nil
			}
		}
	}
	// Unrecognized shapes degrade to "no image" rather than failing the
	// whole profile decode.
	*r = ""
	return nil
}

// ProfileWire is the tolerant wire shape of an alumni account. Every field
// an avatar has ever been observed under is declared here so normalization
// happens in exactly one place.
type ProfileWire struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`

	ProgramCourse string  `json:"program_course"`
	YearGraduated FlexInt `json:"year_graduated"`

	Image        ImageRef `json:"image"`
	ProfileImage ImageRef `json:"profile_image"`
	Avatar       ImageRef `json:"avatar"`
	Photo        ImageRef `json:"photo"`
	Picture      ImageRef `json:"picture"`
	ImageURL     ImageRef `json:"image_url"`
	Img          ImageRef `json:"img"`

	Profile *nestedProfileWire `json:"profile"`
	User    *nestedUserWire    `json:"user"`
}

type nestedProfileWire struct {
	Image   ImageRef `json:"image"`
	Avatar  ImageRef `json:"avatar"`
	Photo   ImageRef `json:"photo"`
	Picture ImageRef `json:"picture"`
}

type nestedUserWire struct {
	Image        ImageRef `json:"image"`
	ProfileImage ImageRef `json:"profile_image"`
	Avatar       ImageRef `json:"avatar"`

	Profile *nestedProfileWire `json:"profile"`
}

// imageCandidates enumerates every image-like value in probe priority
// order: top-level keys first, then profile.*, user.*, user.profile.*.
func (w ProfileWire) imageCandidates() []string {
	var out []string
	add := func(refs ...ImageRef) {
		for _, r := range refs {
			if r != "" {
				out = append(out, string(r))
			}
		}
	}
	add(w.Image, w.ProfileImage, w.Avatar, w.Photo, w.Picture, w.ImageURL, w.Img)
	if w.Profile != nil {
		add(w.Profile.Image, w.Profile.Avatar, w.Profile.Photo, w.Profile.Picture)
	}
	if w.User != nil {
		add(w.User.Image, w.User.ProfileImage, w.User.Avatar)
		if w.User.Profile != nil {
			add(w.User.Profile.Image, w.User.Profile.Avatar)
		}
	}
	return out
}

// ProfileFromWire converts a tolerant wire profile into the strict internal
// type. Every image candidate is normalized to an absolute URL against
// apiBase; relative paths must not be cached, since they resolve
// differently depending on who reads the cache.
func ProfileFromWire(w ProfileWire, apiBase string) models.Profile {
	p := models.Profile{
		ID:            w.ID,
		Username:      w.Username,
		Email:         w.Email,
		FullName:      w.FullName,
		ProgramCourse: w.ProgramCourse,
		YearGraduated: int(w.YearGraduated),
	}
	if p.ID == 0 {
		p.ID = w.UserID
	}

	p.ImageCandidates = []string{}
	for _, c := range w.imageCandidates() {
		if u := NormalizeURL(apiBase, c); u != "" {
			p.ImageCandidates = append(p.ImageCandidates, u)
		}
	}
	if len(p.ImageCandidates) > 0 {
		p.ImageURL = p.ImageCandidates[0]
	}

	return p
}

// NormalizeURL turns one image candidate into an absolute URL. Absolute
// http(s) URLs and data URIs pass through; root-relative paths are joined
// to the API base; anything else is treated as relative to the base.
// Empty input normalizes to empty.
func NormalizeURL(apiBase, candidate string) string {
	s := strings.TrimSpace(candidate)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return s
	}
	base := strings.TrimRight(apiBase, "/")
	if strings.HasPrefix(s, "/") {
		return base + s
	}
	return base + "/" + s
}
