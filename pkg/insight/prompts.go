package insight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholder marks where a prompt template receives its input
const Placeholder = "%s"

// Default prompt templates
const (
	DefaultDescriptionPrompt = `Based on the following transcription, generate a detailed content description.
Transcription: %s`

	DefaultSummaryPrompt = `Based on the following content description, generate a concise summary in 4-5 lines.
Content: %s`

	DefaultKeywordsPrompt = `From the following content, identify only the 3-4 most relevant keywords. Respond with only the keywords, separated by commas.
Content: %s`
)

// Prompts holds the three templates used to derive insights
type Prompts struct {
	Description string `yaml:"description"`
	Summary     string `yaml:"summary"`
	Keywords    string `yaml:"keywords"`
}

// DefaultPrompts returns the built-in templates
func DefaultPrompts() *Prompts {
	return &Prompts{
		Description: DefaultDescriptionPrompt,
		Summary:     DefaultSummaryPrompt,
		Keywords:    DefaultKeywordsPrompt,
	}
}

// Validate checks that every template has an input placeholder
func (p *Prompts) Validate() error {
	for name, template := range map[string]string{
		"description": p.Description,
		"summary":     p.Summary,
		"keywords":    p.Keywords,
	} {
		if strings.TrimSpace(template) == "" {
			return fmt.Errorf("prompt %q is empty", name)
		}
		if !strings.Contains(template, Placeholder) {
			return fmt.Errorf("prompt %q has no %s placeholder", name, Placeholder)
		}
	}
	return nil
}

// render substitutes the first placeholder with input. Other percent signs
// are left alone
func render(template, input string) string {
	return strings.Replace(template, Placeholder, input, 1)
}

// promptEntry is one entry of the override file: an inline template or a
// path to a file holding the template
type promptEntry struct {
	Template string `yaml:"template"`
	File     string `yaml:"file"`
}

type promptFile struct {
	Description *promptEntry `yaml:"description"`
	Summary     *promptEntry `yaml:"summary"`
	Keywords    *promptEntry `yaml:"keywords"`
}

// LoadPrompts reads a YAML override file. Entries that are absent keep their
// default template; relative prompt file paths resolve against the YAML
// file's directory
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}

	// A truncated file mid-write must not reset prompts to the defaults
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("prompts file %s is empty", path)
	}

	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}

	prompts := DefaultPrompts()
	baseDir := filepath.Dir(path)

	for _, target := range []struct {
		entry *promptEntry
		dest  *string
	}{
		{file.Description, &prompts.Description},
		{file.Summary, &prompts.Summary},
		{file.Keywords, &prompts.Keywords},
	} {
		if target.entry == nil {
			continue
		}

		template, err := target.entry.resolve(baseDir)
		if err != nil {
			return nil, err
		}
		*target.dest = template
	}

	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	return prompts, nil
}

func (e *promptEntry) resolve(baseDir string) (string, error) {
	if e.Template != "" && e.File != "" {
		return "", fmt.Errorf("prompt entry sets both template and file")
	}

	if e.File == "" {
		return strings.TrimSpace(e.Template), nil
	}

	path := e.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return strings.TrimSpace(string(content)), nil
}
