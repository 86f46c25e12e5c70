package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightpath-aba/platform/pkg/common/logger"
	"github.com/brightpath-aba/platform/pkg/common/models"
)

// Service turns clinician observations plus an assembled context into a
// drafted session note. It never persists anything: the caller reviews the
// text and saves it through the session-note service in a separate step, so
// a cancelled or failed generation leaves no half-written note behind.
type Service struct {
	provider     TextGenerator
	template     TemplateConfig
	defaultModel string
	timeout      time.Duration
}

func NewService(provider TextGenerator, template TemplateConfig, defaultModel string, timeout time.Duration) *Service {
	return &Service{
		provider:     provider,
		template:     template,
		defaultModel: defaultModel,
		timeout:      timeout,
	}
}

// Generate drafts a note from the observations and the context map. The
// result is either usable text or a typed *ProviderError; it is never both
// empty and nil-erred.
func (s *Service) Generate(ctx context.Context, observations string, c Context, model string) (models.GeneratedNote, error) {
	if model == "" {
		model = s.defaultModel
	}

	system := s.systemPrompt(c)
	user := fmt.Sprintf("Generate ABA session notes using the template structure. Fill in the template with this session data: %s", observations)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.GenerateText(ctx, model, system, user)
	if err != nil {
		logger.Log.WithError(err).WithField("model", model).Warn("Note generation failed")
		return models.GeneratedNote{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.GeneratedNote{}, &ProviderError{
			Kind:    ProviderMalformed,
			Message: "provider returned no usable content",
		}
	}

	logger.Log.WithFields(map[string]interface{}{
		"model":    model,
		"duration": time.Since(start).Milliseconds(),
	}).Info("Note generated")

	return models.GeneratedNote{
		Text:         text,
		ModelUsed:    model,
		TemplateUsed: true,
	}, nil
}

func (s *Service) systemPrompt(c Context) string {
	contextBlock := fmt.Sprintf(`Client Name: %s
Date of Birth: %s
ICD Code/Diagnosis: %s
Session Date: %s
Session Time: %s
Session Duration: %s minutes
Location: %s
Clinician: %s
Clinic: %s
Goals/Targets: %s`,
		c[KeyClientName],
		c[KeyClientDOB],
		c[KeyClientICD],
		c[KeySessionDate],
		c[KeySessionTime],
		c[KeySessionDuration],
		c[KeySessionLocation],
		c[KeyClinician],
		c[KeyClinic],
		c[KeyGoals],
	)

	return fmt.Sprintf(`You are an expert ABA (Applied Behavior Analysis) therapist assistant.
Generate professional session notes based on the observations provided.

Use this EXACT template structure for the notes and fill in the sections with the provided session data:
%s

Instructions for filling the template:
%s

Session context:
%s`, s.template.NoteTemplate, s.template.Instructions, contextBlock)
}
