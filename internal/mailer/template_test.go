package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLBodyEscapesInput(t *testing.T) {
	html, err := renderHTMLBody(Enquiry{
		Name:    "<script>alert(1)</script>",
		Email:   "evil@example.com",
		Message: "hello & goodbye",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, "hello &amp; goodbye")
}

func TestRenderHTMLBodyNewlinesBecomeBreaks(t *testing.T) {
	html, err := renderHTMLBody(Enquiry{
		Name:    "John",
		Email:   "john@example.com",
		Message: "line one\nline two",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "line one<br>line two")
}

func TestRenderHTMLBodyDefaultPhone(t *testing.T) {
	html, err := renderHTMLBody(Enquiry{
		Name:    "John",
		Email:   "john@example.com",
		Message: "hi",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Not provided")

	html, err = renderHTMLBody(Enquiry{
		Name:    "John",
		Email:   "john@example.com",
		Phone:   "555-0100",
		Message: "hi",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "555-0100")
}

func TestRenderTextBody(t *testing.T) {
	text := renderTextBody(Enquiry{
		Name:    "John Smith",
		Email:   "john@example.com",
		Message: "I need advice.",
	})

	assert.Contains(t, text, "Name:  John Smith")
	assert.Contains(t, text, "Email: john@example.com")
	assert.Contains(t, text, "Phone: Not provided")
	assert.Contains(t, text, "I need advice.")
}
