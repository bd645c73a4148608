package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://boards.greenhouse.io/acme/jobs/1", PlatformGreenhouse},
		{"https://jobs.lever.co/acme/abc", PlatformLever},
		{"https://acme.wd5.myworkdayjobs.com/en-US/careers", PlatformWorkday},
		{"https://example.com/careers", PlatformUnknown},
		{"", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestHTMLToText_GreenhouseSelectors(t *testing.T) {
	page := `<html><body>
<div class="job__description body"><p>Build pipelines.</p><p>Use SQL.</p></div>
<div class="application--wrapper"><form><label>Name</label></form></div>
</body></html>`

	text, err := HTMLToText(page, "https://boards.greenhouse.io/acme/jobs/1")
	require.NoError(t, err)

	assert.Equal(t, "Build pipelines.\nUse SQL.", text)
}

func TestHTMLToText_RemovesScriptAndStyle(t *testing.T) {
	page := `<html><head><style>p{}</style></head><body><script>var x=1;</script><article>Python<br>AWS</article></body></html>`

	text, err := HTMLToText(page, "")
	require.NoError(t, err)

	assert.Equal(t, "Python\nAWS", text)
}

func TestHTMLToText_FallbackToBody(t *testing.T) {
	text, err := HTMLToText(`<html><body><span>Only body text</span></body></html>`, "")
	require.NoError(t, err)

	assert.Equal(t, "Only body text", text)
}
