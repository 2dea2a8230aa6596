package schedule

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Arwin-j/rouTU/internal/gemini"
)

const textInstruction = `The following text contains a class schedule. Extract each class's name, location, start time, and end time.
Return a JSON array of objects with keys 'class_name', 'location', 'start_time' and 'end_time'. Only output the JSON, nothing else.

INPUT:
%s
`

const mediaInstruction = "This is a class schedule provided via %s. Extract each class's name, location, start time, and end time. " +
	"Return a JSON array of objects with keys 'class_name', 'location', 'start_time' and 'end_time'. Only output the JSON."

// BuildPrompt turns an extraction request into model content parts. The
// modality and payload kind are validated here so a mismatch never reaches
// the provider.
func BuildPrompt(req ExtractionRequest) ([]gemini.Content, error) {
	switch req.Modality {
	case ModalityText:
		if strings.TrimSpace(req.Text) == "" {
			return nil, fmt.Errorf("%w: text modality requires non-empty text input", ErrInvalidInput)
		}
		if len(req.Data) > 0 {
			return nil, fmt.Errorf("%w: text modality does not accept a binary payload", ErrInvalidInput)
		}
		return []gemini.Content{{
			Role:  "user",
			Parts: []gemini.Part{{Text: fmt.Sprintf(textInstruction, req.Text)}},
		}}, nil

	case ModalityImage, ModalityAudio:
		if len(req.Data) == 0 {
			return nil, fmt.Errorf("%w: %s modality requires a binary payload", ErrInvalidInput, req.Modality)
		}
		if req.MimeType == "" {
			return nil, fmt.Errorf("%w: %s modality requires a resolvable media type", ErrInvalidInput, req.Modality)
		}
		return []gemini.Content{{
			Role: "user",
			Parts: []gemini.Part{
				{InlineData: &gemini.InlineData{
					MimeType: req.MimeType,
					Data:     base64.StdEncoding.EncodeToString(req.Data),
				}},
				{Text: fmt.Sprintf(mediaInstruction, req.Modality)},
			},
		}}, nil

	default:
		return nil, fmt.Errorf("%w: unknown modality %q", ErrInvalidInput, string(req.Modality))
	}
}
