// Package prompt builds the Japanese analysis prompts sent to the
// generative backend. Templates are embedded so prompt wording ships with
// the binary and can be reviewed in one place.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"maisoku/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// templateSet holds the raw template strings loaded from YAML.
type templateSet struct {
	CameraBase               string `yaml:"camera_base"`
	CameraBasicSuffix        string `yaml:"camera_basic_suffix"`
	CameraPersonalizedSuffix string `yaml:"camera_personalized_suffix"`
	AreaBasic                string `yaml:"area_basic"`
	AreaPersonalized         string `yaml:"area_personalized"`
}

// templateData is the binding for template execution.
type templateData struct {
	Address            string
	PreferenceFragment string
}

// Builder renders analysis prompts from the embedded templates.
type Builder struct {
	cameraBase               string
	cameraBasicSuffix        *template.Template
	cameraPersonalizedSuffix *template.Template
	areaBasic                *template.Template
	areaPersonalized         *template.Template
}

// NewBuilder loads and parses the embedded prompt templates.
func NewBuilder() (*Builder, error) {
	data, err := configFiles.ReadFile("config/prompts.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts.yaml: %w", err)
	}

	var set templateSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts.yaml: %w", err)
	}

	b := &Builder{cameraBase: set.CameraBase}

	parse := func(name, text string) (*template.Template, error) {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt template %q is empty", name)
		}
		return template.New(name).Parse(text)
	}

	if b.cameraBasicSuffix, err = parse("camera_basic_suffix", set.CameraBasicSuffix); err != nil {
		return nil, err
	}
	if b.cameraPersonalizedSuffix, err = parse("camera_personalized_suffix", set.CameraPersonalizedSuffix); err != nil {
		return nil, err
	}
	if b.areaBasic, err = parse("area_basic", set.AreaBasic); err != nil {
		return nil, err
	}
	if b.areaPersonalized, err = parse("area_personalized", set.AreaPersonalized); err != nil {
		return nil, err
	}

	return b, nil
}

// Camera renders the flyer-analysis prompt. A nil or empty preference set
// yields the objective variant.
func (b *Builder) Camera(prefs *models.UserPreference) (string, error) {
	if prefs.IsEmpty() {
		suffix, err := render(b.cameraBasicSuffix, templateData{})
		if err != nil {
			return "", err
		}
		return b.cameraBase + "\n" + suffix, nil
	}

	suffix, err := render(b.cameraPersonalizedSuffix, templateData{
		PreferenceFragment: prefs.PromptFragment(),
	})
	if err != nil {
		return "", err
	}
	return b.cameraBase + "\n" + suffix, nil
}

// Area renders the area-analysis prompt. A nil or empty preference set
// yields the objective variant.
func (b *Builder) Area(address string, prefs *models.UserPreference) (string, error) {
	if prefs.IsEmpty() {
		return render(b.areaBasic, templateData{Address: address})
	}
	return render(b.areaPersonalized, templateData{
		Address:            address,
		PreferenceFragment: prefs.PromptFragment(),
	})
}

func render(t *template.Template, data templateData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
