package deployment

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/bootstrap.sh.tmpl
var templatesFS embed.FS

// bootstrapData feeds the machine bootstrap template.
type bootstrapData struct {
	Username    string
	GoVersion   string
	SetupScript string
	RemoteDir   string
}

// renderBootstrap returns the user data every machine boots with. It creates
// the admin user, installs the toolchain and writes the setup script.
func renderBootstrap(data bootstrapData) (string, error) {
	content, err := templatesFS.ReadFile("templates/bootstrap.sh.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to read bootstrap template: %w", err)
	}

	tmpl, err := template.New("bootstrap").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse bootstrap template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute bootstrap template: %w", err)
	}
	return buf.String(), nil
}
