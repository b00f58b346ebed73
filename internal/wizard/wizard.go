// Package wizard collects project settings interactively and renders a
// starter .gauntlet.yaml.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/gauntlet-dev/gauntlet/internal/checks"
)

// ProjectSpec holds all fields collected during the interactive wizard.
type ProjectSpec struct {
	CheckTypes  []string
	MaxParallel int
	FailFast    bool
	History     bool
}

const configTemplate = `# gauntlet project configuration
max_parallel: {{ .MaxParallel }}
fail_fast: {{ .FailFast }}
{{ if .History }}
history:
  dir: .gauntlet/history
  retention: 30
{{ end }}
tasks:
{{- range .CheckTypes }}
  - name: {{ . }}
    type: {{ . }}
{{- if eq . "tests" }}
    depends_on: [code_quality]
{{- end }}
{{- if eq . "performance" }}
    depends_on: [tests]
{{- end }}
    timeout: 5m
{{- end }}
`

// RunInitWizard runs an interactive huh form to collect project
// settings. If defaults is true the form is skipped and a standard
// setup is returned.
func RunInitWizard(in io.Reader, out io.Writer, defaults bool) (*ProjectSpec, error) {
	if defaults {
		return &ProjectSpec{
			CheckTypes:  []string{checks.TypeCodeQuality, checks.TypeTests},
			MaxParallel: 0,
			History:     true,
		}, nil
	}

	var (
		selected    []string
		maxParallel = "0"
		failFast    bool
		history     = true
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Checks to run").
				Description("Pick the checks for this project").
				Options(
					huh.NewOption("code quality (gofmt, go vet)", checks.TypeCodeQuality).Selected(true),
					huh.NewOption("unit tests (go test)", checks.TypeTests).Selected(true),
					huh.NewOption("vulnerability scan (govulncheck)", checks.TypeSecurity),
					huh.NewOption("benchmarks (go test -bench)", checks.TypePerformance),
				).
				Value(&selected).
				Validate(func(vals []string) error {
					if len(vals) == 0 {
						return fmt.Errorf("select at least one check")
					}
					return nil
				}),
			huh.NewInput().
				Title("Max parallel checks").
				Description("0 lets the host decide").
				Value(&maxParallel).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 0 {
						return fmt.Errorf("enter a non-negative integer")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Stop at the first failure?").
				Value(&failFast),
			huh.NewConfirm().
				Title("Keep run history?").
				Value(&history),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	parallel, _ := strconv.Atoi(strings.TrimSpace(maxParallel))
	return &ProjectSpec{
		CheckTypes:  selected,
		MaxParallel: parallel,
		FailFast:    failFast,
		History:     history,
	}, nil
}

// GenerateConfig renders a .gauntlet.yaml from the given spec.
func GenerateConfig(spec *ProjectSpec) (string, error) {
	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, spec); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
