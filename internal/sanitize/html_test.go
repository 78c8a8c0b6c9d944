package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText_RemovesAllHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "script tag", input: `Hello <script>alert('xss')</script> World`, expected: `Hello  World`},
		{name: "inline event handler", input: `<div onclick="alert('xss')">Click me</div>`, expected: `Click me`},
		{name: "mixed tags", input: `<b>Bold</b> <i>Italic</i>`, expected: `Bold Italic`},
		{name: "apostrophe survives", input: `Ananya D'Souza`, expected: `Ananya D'Souza`},
		{name: "ampersand survives", input: `Glow & Co`, expected: `Glow & Co`},
		{name: "trimmed", input: "  Priya  ", expected: "Priya"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Text(tt.input))
		})
	}
}

func TestHTML_KeepsFormatting(t *testing.T) {
	out := HTML(`<p>Bridal <strong>masterclass</strong></p><script>alert(1)</script>`)
	require.Contains(t, out, "<strong>masterclass</strong>")
	require.False(t, strings.Contains(out, "script"))
}

func TestPhone(t *testing.T) {
	require.Equal(t, "+919876543210", Phone(" +91 98765-43210 "))
	require.Equal(t, "9876543210", Phone("98765 43210"))
	require.Equal(t, "91", Phone("9+1"))
	require.Equal(t, "", Phone("call me"))
}

func TestHandle(t *testing.T) {
	require.Equal(t, "glowbysana", Handle("@GlowBySana"))
	require.Equal(t, "glowbysana", Handle("https://www.instagram.com/glowbysana/"))
	require.Equal(t, "", Handle(""))
}
