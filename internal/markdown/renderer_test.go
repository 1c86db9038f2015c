package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderKeepsFormatting(t *testing.T) {
	out, err := NewRenderer().Render("# Reset VPN\n\n| Step | Action |\n|---|---|\n| 1 | ~~reboot~~ sign in |\n")
	require.NoError(t, err)
	assert.Contains(t, out, `<h1 id="reset-vpn">Reset VPN</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<del>reboot</del>")
}

func TestRenderStripsScripts(t *testing.T) {
	out, err := NewRenderer().Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}

func TestRenderLinkifiesUrls(t *testing.T) {
	out, err := NewRenderer().Render("see https://status.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, `href="https://status.example.com"`)
}
