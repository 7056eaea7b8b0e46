package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// maxSynthesisChunk bounds the text sent in one synthesis request. Long
// scripts are split on whitespace so no word is ever broken across chunks.
const maxSynthesisChunk = 4000

// splitChunks splits text into pieces of at most limit characters, breaking
// only at whitespace. A single word longer than the limit becomes its own
// chunk rather than being split.
func splitChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	words := strings.Fields(text)
	var chunks []string
	var current strings.Builder
	for _, w := range words {
		if current.Len() > 0 && current.Len()+1+len(w) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// synthesizeStage turns the translated script into a voice track. The text is
// chunked under the request size limit and the audio segments are joined in
// order.
func (o *Orchestrator) synthesizeStage(ctx context.Context, st *runState) error {
	if o.synthesizer == nil {
		st.audio = mockAudio(st.translation)
		return nil
	}

	chunks := splitChunks(st.translation, maxSynthesisChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to synthesize")
	}

	var audio []byte
	for i, chunk := range chunks {
		var part []byte
		err := retryOnce(ctx, func() error {
			var serr error
			part, serr = o.synthesizer.Synthesize(ctx, chunk, st.voiceID)
			return serr
		})
		if err != nil {
			return fmt.Errorf("synthesis failed on chunk %d/%d: %w", i+1, len(chunks), err)
		}
		if len(part) == 0 {
			return fmt.Errorf("synthesis returned no audio for chunk %d/%d", i+1, len(chunks))
		}
		audio = append(audio, part...)
	}

	st.audio = audio
	return nil
}

// mockAudio produces a small deterministic MP3-framed payload so mock runs
// still yield a playable-looking artifact on disk.
func mockAudio(text string) []byte {
	header := []byte{0xFF, 0xFB, 0x90, 0x00}
	payload := []byte(fmt.Sprintf("MOCK AUDIO %d chars", len(text)))
	return append(header, payload...)
}
