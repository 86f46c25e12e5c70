package generation

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TemplateConfig holds the structured note template and the filling
// instructions embedded in the generation system prompt. Clinics that want
// different section headings point NOTE_TEMPLATE_PATH at their own YAML.
type TemplateConfig struct {
	NoteTemplate string `yaml:"note_template"`
	Instructions string `yaml:"instructions"`
}

func LoadTemplate(path string) (TemplateConfig, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultTemplate(), err
	}

	var cfg TemplateConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return TemplateConfig{}, err
	}
	if cfg.NoteTemplate == "" {
		return TemplateConfig{}, errors.New("note template is empty")
	}
	if cfg.Instructions == "" {
		cfg.Instructions = DefaultTemplate().Instructions
	}

	return cfg, nil
}

func DefaultTemplate() TemplateConfig {
	return TemplateConfig{
		NoteTemplate: `**Client Information**
- Name: [Name], DOB: [MM/DD/YYYY], Insurance: [Name], Diagnosis: [ICD Code]
- Session Date/Time: [Date], [Start-End], Location: [Home/Clinic/School]
- Clinician: [Name], Credentials; Units: [X x 15-min]

**Goals/Targets**
- Goal A: description of target, baseline vs. expected performance
- Goal B: ...

**Interventions Implemented**
- Intervention A: taught via [DTT/NET/etc.], prompting level [full/partial], reinforcement [type].
- Intervention B: ...

**Client Response & Observations**
- For Goal A: ran X trials; client responded correctly Y% of time; error correction applied as needed.
- For Goal B: ...

**Behavioral Events**
- Behavior X occurred [when? antecedent]; RBT responded using [strategy]; replacement behaviors observed: [description].

**Data Summary**
- Goal-wise performance table or bullet:
  - Goal A: X trials, Y correct (Y%)...
  - Behavior incidents: frequency/duration...

**Plan for Next Session**
- Suggested adjustments: e.g. increase complexity, fade prompts, change reinforcement.
- New target programming suggestions: ...`,
		Instructions: `- Replace all placeholders in [brackets] with actual session data
- If specific information is not available, use "Not provided" or "N/A"
- Maintain the exact formatting and structure of the template
- Include all sections even if some data is missing
- Be professional and clinical in tone`,
	}
}
