package errors

import (
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "assets/data/spotify_songs.csv", false},
		{"absolute", "/srv/data/spotify_songs.csv", false},
		{"dotted", "./spotify_songs.csv", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"null byte", "data\x00.csv", true},
		{"newline", "data\n.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.com/spotify_songs.csv", false},
		{"http://localhost:8000/data.csv", false},
		{"", true},
		{"ftp://example.com/data.csv", true},
		{"file:///etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateURL(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.com/a.csv") {
		t.Error("https URL should be detected")
	}
	if IsURL("data/a.csv") {
		t.Error("relative path should not be a URL")
	}
}

func TestValidateGenre(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"pop", false},
		{"r&b", false},
		{"EDM", false},
		{"album rock", false},
		{"post-teen pop", false},

		{"", true},
		{"<script>", true},
		{"pop;drop", true},
		{string(make([]byte, 80)), true},
	}

	for _, tt := range tests {
		err := ValidateGenre(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateGenre(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	if err := ValidateFormat("svg", "svg", "json"); err != nil {
		t.Errorf("svg should be valid: %v", err)
	}
	err := ValidateFormat("gif", "svg", "json")
	if err == nil {
		t.Fatal("gif should be invalid")
	}
	if !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidFormat)
	}
}
