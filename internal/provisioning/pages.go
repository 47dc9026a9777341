package provisioning

import (
	"fmt"
	"os"
	"strings"
)

// ContentPlaceholder is replaced by the error message in the error page
const ContentPlaceholder = "%CONTENT%"

// DefaultPage is the credential form served on GET
const DefaultPage = `<!DOCTYPE html>
<html>
    <head> <title>Wifi Setup</title> </head>
    <body> <h1>Wifi Setup</h1>
        <p>Enter the network this device should join.</p>
        <form action="/" method="POST">
          <div>
            <label for="ssid">SSID:</label>
            <input name="ssid" id="ssid" type="text"/>
          </div>
          <div>
            <label for="password">Password:</label>
            <input name="password" id="password" type="password"/>
          </div>
          <div>
            <input type="submit" value="Connect" />
          </div>
        </form>
    </body>
</html>
`

// DefaultErrorPage is served with 400 responses
const DefaultErrorPage = `<!DOCTYPE html>
<html>
  <head><title>Error</title></head>
  <body>
    <h1>Error submitting credentials</h1>
    <p>Press back to try again</p>
    <h2>Error:</h2>
    <p>%CONTENT%</p>
  </body>
</html>`

// DefaultSuccessPage acknowledges an accepted submission
const DefaultSuccessPage = `<!DOCTYPE html>
<html>
  <head><title>Saved</title></head>
  <body>
    <h1>Credentials saved</h1>
    <p>The device is now joining the network. This access point will go away.</p>
  </body>
</html>`

// RenderErrorPage substitutes message into the error page template.
func RenderErrorPage(template, message string) string {
	return strings.ReplaceAll(template, ContentPlaceholder, message)
}

// LoadPage reads a page template from disk, returning fallback when path is empty.
func LoadPage(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read page %s: %w", path, err)
	}

	return string(data), nil
}
