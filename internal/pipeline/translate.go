package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dubflow/api/internal/model"
)

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// splitSegments breaks a transcript into paragraph segments on blank lines.
// Empty segments are dropped so trailing whitespace never produces phantom
// paragraphs.
func splitSegments(text string) []string {
	parts := blankLineRe.Split(strings.TrimSpace(text), -1)
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

const translateSystemPrompt = `You are a professional translator specializing in spoken-word video content. You translate naturally for voice-over narration, preserving tone and pacing rather than translating word for word.`

func buildTranslatePrompt(transcript string, segmentCount int) string {
	var b strings.Builder
	b.WriteString("Translate the following Hindi transcript into natural, fluent English suitable for voice-over narration.\n\n")
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- The transcript has %d paragraphs separated by blank lines.\n", segmentCount)
	b.WriteString("- Your output must have exactly the same number of paragraphs, separated by blank lines, translated one to one.\n")
	b.WriteString("- Do not add commentary, headings, or notes. Output only the translation.\n\n")
	b.WriteString("Transcript:\n\n")
	b.WriteString(transcript)
	return b.String()
}

// translateStage converts the transcript into target-language text. Paragraph
// structure must survive translation one to one; a count mismatch means the
// model broke the format contract and the run aborts.
func (o *Orchestrator) translateStage(ctx context.Context, st *runState) error {
	sourceSegments := splitSegments(st.transcript)
	if len(sourceSegments) == 0 {
		return &ContractViolationError{
			Stage:  model.StageTranslate,
			Reason: "transcript contains no paragraph segments",
		}
	}

	if o.textGen == nil {
		st.translation = mockTranslation(len(sourceSegments))
		return nil
	}

	var out string
	err := retryOnce(ctx, func() error {
		var cerr error
		out, cerr = o.textGen.Complete(ctx, translateSystemPrompt, buildTranslatePrompt(st.transcript, len(sourceSegments)))
		return cerr
	})
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	out = strings.TrimSpace(out)
	translated := splitSegments(out)
	if len(translated) != len(sourceSegments) {
		return &ContractViolationError{
			Stage: model.StageTranslate,
			Reason: fmt.Sprintf("translation has %d paragraphs, transcript has %d",
				len(translated), len(sourceSegments)),
		}
	}

	st.translation = strings.Join(translated, "\n\n")
	return nil
}

// mockTranslation mirrors the mock transcript paragraph for paragraph.
func mockTranslation(segments int) string {
	lines := []string{
		"Hello friends, today we will talk about a new topic.",
		"This topic is very interesting and you will learn a lot from it.",
		"Watch the video till the end and share your thoughts in the comments.",
	}
	if segments < len(lines) {
		lines = lines[:segments]
	}
	for len(lines) < segments {
		lines = append(lines, fmt.Sprintf("Translated paragraph %d.", len(lines)+1))
	}
	return strings.Join(lines, "\n\n")
}
