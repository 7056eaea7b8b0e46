package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dubflow/api/internal/model"
)

const editorScriptSystemPrompt = `You are a senior video editor. Given a voice-over script, you produce a structured editing brief that an editor can follow without watching the raw footage.`

func buildEditorScriptPrompt(translation string) string {
	var b strings.Builder
	b.WriteString("Produce an editing brief for the following English voice-over script.\n\n")
	b.WriteString("For each paragraph of the script, output one segment object with all of these keys:\n")
	b.WriteString(`- "start": approximate start timestamp, "MM:SS"` + "\n")
	b.WriteString(`- "end": approximate end timestamp, "MM:SS"` + "\n")
	b.WriteString(`- "summary": one sentence describing what is said` + "\n")
	b.WriteString(`- "b_roll": array of b-roll shot suggestions` + "\n")
	b.WriteString(`- "overlays": array of on-screen text overlay suggestions` + "\n")
	b.WriteString(`- "transition": transition into the next segment` + "\n")
	b.WriteString(`- "music_mood": background music mood for the segment` + "\n")
	b.WriteString(`- "cuts": array of {"start","end","reason"} spans to trim, empty if none` + "\n\n")
	b.WriteString(`Output only JSON: {"segments": [...]}` + "\n\n")
	b.WriteString("Script:\n\n")
	b.WriteString(translation)
	return b.String()
}

// rawScriptSegment mirrors model.ScriptSegment with pointer fields so a
// missing key can be told apart from an empty value after unmarshaling.
type rawScriptSegment struct {
	Start      *string          `json:"start"`
	End        *string          `json:"end"`
	Summary    *string          `json:"summary"`
	BRoll      *[]string        `json:"b_roll"`
	Overlays   *[]string        `json:"overlays"`
	Transition *string          `json:"transition"`
	MusicMood  *string          `json:"music_mood"`
	Cuts       *[]model.CutSpan `json:"cuts"`
}

// editorScriptStage asks the text model for a structured editing brief over
// the translated script. Each segment must carry every editorial category; a
// segment with a missing key is a broken format contract and aborts the run.
func (o *Orchestrator) editorScriptStage(ctx context.Context, st *runState) error {
	if o.textGen == nil {
		st.script = mockEditorScript(splitSegments(st.translation))
		return nil
	}

	var out string
	err := retryOnce(ctx, func() error {
		var cerr error
		out, cerr = o.textGen.Complete(ctx, editorScriptSystemPrompt, buildEditorScriptPrompt(st.translation))
		return cerr
	})
	if err != nil {
		return fmt.Errorf("editor script generation failed: %w", err)
	}

	script, err := parseEditorScript(out)
	if err != nil {
		return err
	}

	st.script = script
	return nil
}

// parseEditorScript validates the model output segment by segment before
// converting it into the domain type.
func parseEditorScript(response string) (*model.EditorScript, error) {
	response = extractJSON(response)

	var raw struct {
		Segments []rawScriptSegment `json:"segments"`
	}
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return nil, &ContractViolationError{
			Stage:  model.StageEditorScript,
			Reason: fmt.Sprintf("response is not valid JSON: %v", err),
		}
	}
	if len(raw.Segments) == 0 {
		return nil, &ContractViolationError{
			Stage:  model.StageEditorScript,
			Reason: "response contains no segments",
		}
	}

	script := &model.EditorScript{Segments: make([]model.ScriptSegment, 0, len(raw.Segments))}
	for i, seg := range raw.Segments {
		if missing := missingSegmentKeys(seg); len(missing) > 0 {
			return nil, &ContractViolationError{
				Stage:  model.StageEditorScript,
				Reason: fmt.Sprintf("segment %d missing keys: %s", i+1, strings.Join(missing, ", ")),
			}
		}
		script.Segments = append(script.Segments, model.ScriptSegment{
			Start:      *seg.Start,
			End:        *seg.End,
			Summary:    *seg.Summary,
			BRoll:      *seg.BRoll,
			Overlays:   *seg.Overlays,
			Transition: *seg.Transition,
			MusicMood:  *seg.MusicMood,
			Cuts:       *seg.Cuts,
		})
	}
	return script, nil
}

func missingSegmentKeys(seg rawScriptSegment) []string {
	var missing []string
	if seg.Start == nil {
		missing = append(missing, "start")
	}
	if seg.End == nil {
		missing = append(missing, "end")
	}
	if seg.Summary == nil {
		missing = append(missing, "summary")
	}
	if seg.BRoll == nil {
		missing = append(missing, "b_roll")
	}
	if seg.Overlays == nil {
		missing = append(missing, "overlays")
	}
	if seg.Transition == nil {
		missing = append(missing, "transition")
	}
	if seg.MusicMood == nil {
		missing = append(missing, "music_mood")
	}
	if seg.Cuts == nil {
		missing = append(missing, "cuts")
	}
	return missing
}

// renderEditorScript formats the brief as the plain-text document editors
// actually read.
func renderEditorScript(script *model.EditorScript) string {
	var b strings.Builder
	b.WriteString("EDITOR BRIEF\n")
	b.WriteString("============\n\n")
	for i, seg := range script.Segments {
		fmt.Fprintf(&b, "Segment %d  [%s - %s]\n", i+1, seg.Start, seg.End)
		fmt.Fprintf(&b, "  Summary:    %s\n", seg.Summary)
		fmt.Fprintf(&b, "  B-roll:     %s\n", strings.Join(seg.BRoll, "; "))
		fmt.Fprintf(&b, "  Overlays:   %s\n", strings.Join(seg.Overlays, "; "))
		fmt.Fprintf(&b, "  Transition: %s\n", seg.Transition)
		fmt.Fprintf(&b, "  Music:      %s\n", seg.MusicMood)
		if len(seg.Cuts) == 0 {
			b.WriteString("  Cuts:       none\n")
		} else {
			b.WriteString("  Cuts:\n")
			for _, cut := range seg.Cuts {
				fmt.Fprintf(&b, "    %s - %s (%s)\n", cut.Start, cut.End, cut.Reason)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mockEditorScript(segments []string) *model.EditorScript {
	script := &model.EditorScript{Segments: make([]model.ScriptSegment, 0, len(segments))}
	for i, summary := range segments {
		if r := []rune(summary); len(r) > 80 {
			summary = string(r[:80])
		}
		script.Segments = append(script.Segments, model.ScriptSegment{
			Start:      fmt.Sprintf("%02d:%02d", i*30/60, i*30%60),
			End:        fmt.Sprintf("%02d:%02d", (i+1)*30/60, (i+1)*30%60),
			Summary:    summary,
			BRoll:      []string{"talking-head shot", "topic illustration"},
			Overlays:   []string{fmt.Sprintf("Key point %d", i+1)},
			Transition: "cut",
			MusicMood:  "neutral",
			Cuts:       []model.CutSpan{},
		})
	}
	return script
}

// extractJSON pulls the JSON object out of a response that may carry extra
// prose around it.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end != -1 && end > start {
		return s[start : end+1]
	}
	return s
}
