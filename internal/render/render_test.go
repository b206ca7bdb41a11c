package render

import (
	"context"
	"testing"
)

func TestClampScale(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0.1, 0.5},
		{0.5, 0.5},
		{1.0, 1.0},
		{2.4, 2.4},
		{3.0, 3.0},
		{9.9, 3.0},
		{-1, 0.5},
	}
	for _, c := range cases {
		if got := ClampScale(c.in); got != c.want {
			t.Errorf("ClampScale(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPdftoppmRenderer_NoDocument(t *testing.T) {
	var r PdftoppmRenderer
	if _, err := r.RenderPage(context.Background(), 1, 1.0); err == nil {
		t.Error("expected error when no document is loaded")
	}
}
