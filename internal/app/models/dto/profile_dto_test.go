package dto

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	base := "http://127.0.0.1:8000"
	tests := []struct {
		name      string
		candidate string
		want      string
	}{
		{"absolute http", "http://cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"absolute https", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"data uri", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"root relative", "/uploads/a.png", "http://127.0.0.1:8000/uploads/a.png"},
		{"bare relative", "uploads/a.png", "http://127.0.0.1:8000/uploads/a.png"},
		{"surrounding whitespace", "  /a.png ", "http://127.0.0.1:8000/a.png"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeURL(base, tt.candidate); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeURLTrailingSlashBase(t *testing.T) {
	if got := NormalizeURL("http://h/", "/x.jpg"); got != "http://h/x.jpg" {
		t.Fatalf("got %q", got)
	}
}

func TestImageRefShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare string", `"/uploads/a.png"`, "/uploads/a.png"},
		{"null", `null`, ""},
		{"object with url", `{"url": "/a.png"}`, "/a.png"},
		{"object with image", `{"image": "b.png"}`, "b.png"},
		{"object with src", `{"src": "c.png"}`, "c.png"},
		{"unrecognized object", `{"blob": 1}`, ""},
		{"number degrades", `42`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r ImageRef
			if err := json.Unmarshal([]byte(tt.body), &r); err != nil {
				t.Fatal(err)
			}
			if string(r) != tt.want {
				t.Fatalf("got %q, want %q", r, tt.want)
			}
		})
	}
}

func TestProfileFromWireCandidatePriority(t *testing.T) {
	raw := `{
		"id": 5,
		"username": "ana",
		"photo": "/photo.png",
		"profile_image": "/profile_image.png",
		"profile": {"avatar": "/nested_profile_avatar.png"},
		"user": {"image": "/user_image.png", "profile": {"image": "/user_profile_image.png"}}
	}`
	var w ProfileWire
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		t.Fatal(err)
	}

	p := ProfileFromWire(w, "http://h")
	want := []string{
		"http://h/profile_image.png",
		"http://h/photo.png",
		"http://h/nested_profile_avatar.png",
		"http://h/user_image.png",
		"http://h/user_profile_image.png",
	}
	if !reflect.DeepEqual(p.ImageCandidates, want) {
		t.Fatalf("candidate order:\n got %v\nwant %v", p.ImageCandidates, want)
	}
	if p.ImageURL != want[0] {
		t.Fatalf("primary image %q", p.ImageURL)
	}
}

func TestProfileFromWireFallsBackToUserID(t *testing.T) {
	p := ProfileFromWire(ProfileWire{UserID: 9}, "http://h")
	if p.ID != 9 {
		t.Fatalf("id %d", p.ID)
	}
	if len(p.ImageCandidates) != 0 {
		t.Fatalf("unexpected candidates %v", p.ImageCandidates)
	}
}

func TestProfileFromWireYearAsString(t *testing.T) {
	var w ProfileWire
	if err := json.Unmarshal([]byte(`{"id": 1, "year_graduated": "2024"}`), &w); err != nil {
		t.Fatal(err)
	}
	if p := ProfileFromWire(w, "http://h"); p.YearGraduated != 2024 {
		t.Fatalf("year %d", p.YearGraduated)
	}
}
