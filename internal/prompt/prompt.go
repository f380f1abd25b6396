// Package prompt assembles the three-part requests sent to the generation provider.
package prompt

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	_ "embed"
)

// Mode selects the instruction set.
type Mode string

const (
	ModeFill Mode = "fill"
	ModeEdit Mode = "edit"
)

const (
	templateLabel    = "LaTeX Template:\n"
	userDataLabel    = "User Data:\n"
	userPromptLabel  = "User Prompt:\n"
	jsonIndent       = "  "
	hashPartSplitter = "\n\x00\n"
)

var (
	//go:embed prompts/fill.txt
	fillInstructions string
	//go:embed prompts/edit.txt
	editInstructions string
)

// Prompt is an ordered list of text parts: instructions, document, data.
type Prompt struct {
	Mode  Mode
	Parts []string
}

// BuildFill merges template LaTeX and structured resume data into a fill prompt.
// Invalid JSON in userData is passed through verbatim.
func BuildFill(templateLatex string, userData json.RawMessage) Prompt {
	return Prompt{
		Mode: ModeFill,
		Parts: []string{
			Instructions(ModeFill),
			templateLabel + templateLatex,
			userDataLabel + indentJSON(userData),
		},
	}
}

// BuildEdit applies a free-text instruction to an already rendered document.
func BuildEdit(currentLatex, instruction string) Prompt {
	return Prompt{
		Mode: ModeEdit,
		Parts: []string{
			Instructions(ModeEdit),
			templateLabel + currentLatex,
			userPromptLabel + encodeString(instruction),
		},
	}
}

// Instructions returns the fixed instruction text for mode.
func Instructions(mode Mode) string {
	if mode == ModeEdit {
		return strings.TrimSpace(editInstructions)
	}
	return strings.TrimSpace(fillInstructions)
}

// Hash returns a stable hex digest of the prompt, used for log correlation.
func (p Prompt) Hash() string {
	sum := sha256.Sum256([]byte(string(p.Mode) + hashPartSplitter + strings.Join(p.Parts, hashPartSplitter)))
	return hex.EncodeToString(sum[:])
}

func indentJSON(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", jsonIndent); err != nil {
		return string(raw)
	}
	return buf.String()
}

func encodeString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(s); err != nil {
		return s
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
