package generator

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"testforge/internal/analyzer"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// UIElement describes a web element a UI test should exercise.
type UIElement struct {
	ID           string
	XPath        string
	Name         string
	Dependencies string
}

// PromptBuilder renders extracted signatures into generation prompts.
type PromptBuilder struct {
	templates *template.Template
}

// NewPromptBuilder parses the embedded prompt templates.
func NewPromptBuilder() (*PromptBuilder, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("generator: failed to parse prompt templates: %w", err)
	}
	return &PromptBuilder{templates: tmpl}, nil
}

type promptData struct {
	FunctionName string
	Arguments    string
	ReturnType   string
	Docstring    string
	Dependencies string
}

// Unit renders the unit-test prompt for a signature.
func (b *PromptBuilder) Unit(sig *analyzer.CallableSignature) (string, error) {
	return b.render("unit.tmpl", signatureData(sig, nil))
}

// Integration renders the integration-test prompt for a signature and its
// external dependencies.
func (b *PromptBuilder) Integration(sig *analyzer.CallableSignature, dependencies []string) (string, error) {
	return b.render("integration.tmpl", signatureData(sig, dependencies))
}

// UI renders the UI-test prompt for a web element.
func (b *PromptBuilder) UI(el UIElement) (string, error) {
	data := struct {
		ElementID    string
		ElementXPath string
		ElementName  string
		Dependencies string
	}{
		ElementID:    orNA(el.ID),
		ElementXPath: orNA(el.XPath),
		ElementName:  orNA(el.Name),
		Dependencies: el.Dependencies,
	}
	if data.Dependencies == "" {
		data.Dependencies = "None"
	}
	return b.render("ui.tmpl", data)
}

func (b *PromptBuilder) render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := b.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("generator: failed to render %s: %w", name, err)
	}
	return sb.String(), nil
}

func signatureData(sig *analyzer.CallableSignature, dependencies []string) promptData {
	data := promptData{
		FunctionName: sig.Name,
		Arguments:    FormatArguments(sig.Arguments),
		ReturnType:   sig.ReturnType,
		Docstring:    sig.Docstring,
		Dependencies: strings.Join(dependencies, ", "),
	}
	if data.ReturnType == "" {
		data.ReturnType = "unspecified"
	}
	if data.Docstring == "" {
		data.Docstring = "No docstring available."
	}
	return data
}

// FormatArguments renders an argument list the way prompts describe it:
// star markers for variadic forms, annotations when declared.
func FormatArguments(args []analyzer.ArgumentSpec) string {
	if len(args) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		name := arg.Name
		switch arg.Kind {
		case analyzer.ArgVariadicPositional:
			name = "*" + name
		case analyzer.ArgVariadicKeyword:
			name = "**" + name
		}
		rendered := name
		if arg.Type != "" {
			rendered += ": " + arg.Type
		}
		switch arg.Kind {
		case analyzer.ArgVariadicPositional:
			rendered += " (variable-length arguments)"
		case analyzer.ArgVariadicKeyword:
			rendered += " (keyword arguments)"
		case analyzer.ArgKeywordOnly:
			rendered += " (keyword-only)"
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
