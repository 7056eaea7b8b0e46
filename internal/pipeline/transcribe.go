package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// transcribeStage produces the source-language transcript of the input audio.
func (o *Orchestrator) transcribeStage(ctx context.Context, st *runState) error {
	if o.transcriber == nil {
		st.transcript = mockTranscript()
		return nil
	}

	f, err := os.Open(st.inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input for transcription: %w", err)
	}
	defer f.Close()

	var text string
	err = retryOnce(ctx, func() error {
		if _, serr := f.Seek(0, 0); serr != nil {
			return fmt.Errorf("failed to rewind input: %w", serr)
		}
		var terr error
		text, terr = o.transcriber.Transcribe(ctx, f, filepath.Base(st.inputPath), o.opts.SourceLanguage)
		return terr
	})
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("transcription returned no text")
	}

	st.transcript = text
	return nil
}

// mockTranscript is the deterministic transcript used when no speech-to-text
// service is configured. Three paragraphs so downstream segment handling gets
// exercised even in mock mode.
func mockTranscript() string {
	return strings.Join([]string{
		"नमस्ते दोस्तों, आज हम एक नए विषय पर बात करेंगे।",
		"यह विषय बहुत ही रोचक है और इससे आपको बहुत कुछ सीखने को मिलेगा।",
		"वीडियो को अंत तक देखें और अपने विचार कमेंट में बताएं।",
	}, "\n\n")
}

// languageSuffix maps a language code to the human-readable suffix used in
// artifact file names.
func languageSuffix(code string) string {
	switch code {
	case "hin":
		return "hindi"
	case "eng":
		return "english"
	default:
		return code
	}
}
