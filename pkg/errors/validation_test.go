package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "scalars", false},
		{"dataset id", "ctData", false},
		{"with dash", "pt-data", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"slash", "a/b", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("name", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeConfiguration) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeConfiguration)
			}
		})
	}
}

func TestValidateComponents(t *testing.T) {
	tests := []struct {
		count, components int
		wantErr           bool
	}{
		{4, 1, false},
		{4, 2, false},
		{0, 3, false},
		{3, 2, true},
		{4, 0, true},
		{4, -1, true},
	}

	for _, tt := range tests {
		err := ValidateComponents(tt.count, tt.components)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateComponents(%d, %d) error = %v, wantErr %v", tt.count, tt.components, err, tt.wantErr)
		}
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		lo, hi  float64
		wantErr bool
	}{
		{0, 1, false},
		{-1024, 3071, false},
		{5, 5, false},
		{2, 1, false},
		{math.NaN(), 1, true},
		{0, math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidateRange(tt.lo, tt.hi)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateRange(%g, %g) error = %v, wantErr %v", tt.lo, tt.hi, err, tt.wantErr)
		}
	}
}

func TestValidateKeyPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"axial", false},
		{"axial/ct", false},
		{"", true},
		{"/axial", true},
		{"axial/", true},
		{"axial//ct", true},
	}

	for _, tt := range tests {
		err := ValidateKeyPath(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateKeyPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
