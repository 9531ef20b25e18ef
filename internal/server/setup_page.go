// ABOUTME: Renders the GET setup/status page from markdown via goldmark
// ABOUTME: Summarizes webhook and command registration results as HTML

package server

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"

	"github.com/balakhaniyan/cobalt/internal/telegram"
)

const pageShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>cobalt relay</title></head>
<body>
%s
</body>
</html>
`

// renderSetupPage builds the setup summary as markdown and converts it to an
// HTML page.
func renderSetupPage(publicURL string, webhook, commands *telegram.APIResponse) []byte {
	md := fmt.Sprintf(`# Welcome!

Telegram-to-We relay is configured.

* Webhook URL: %s - registration %s
* Command list: %s
`, publicURL, registrationStatus(webhook), registrationStatus(commands))

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		// Markdown here is static; conversion cannot realistically fail, but
		// degrade to the raw text rather than an empty page.
		return []byte(fmt.Sprintf(pageShell, "<pre>"+md+"</pre>"))
	}

	return []byte(fmt.Sprintf(pageShell, buf.String()))
}

func registrationStatus(resp *telegram.APIResponse) string {
	if resp.OK {
		return "**succeeded**"
	}
	return fmt.Sprintf("**failed** (%s)", resp.Description)
}
