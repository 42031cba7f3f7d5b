package handler

import (
	"strings"
	"testing"
)

func TestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&viewportRequest{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"lat is required", "lng is required", "zoom is required"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("%q missing %q", err.Error(), want)
		}
	}

	lat, lng, zoom := -91.0, 0.0, 5
	err = v.Validate(&viewportRequest{Lat: &lat, Lng: &lng, Zoom: &zoom})
	if err == nil || err.Error() != "lat must be at least -90" {
		t.Errorf("unexpected error %v", err)
	}
}
