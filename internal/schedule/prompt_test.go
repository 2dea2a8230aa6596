package schedule

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildPromptText(t *testing.T) {
	contents, err := BuildPrompt(ExtractionRequest{
		Modality: ModalityText,
		Text:     "CS101 meets in Engineering Hall 9:00-9:50",
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)
	require.Contains(t, contents[0].Parts[0].Text, "CS101 meets in Engineering Hall 9:00-9:50")
	require.Contains(t, contents[0].Parts[0].Text, "'class_name'")
	require.Contains(t, contents[0].Parts[0].Text, "Only output the JSON")
}

func TestBuildPromptImage(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	contents, err := BuildPrompt(ExtractionRequest{
		Modality: ModalityImage,
		Data:     payload,
		MimeType: "image/png",
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)
	require.NotNil(t, contents[0].Parts[0].InlineData)
	require.Equal(t, "image/png", contents[0].Parts[0].InlineData.MimeType)
	require.Equal(t, base64.StdEncoding.EncodeToString(payload), contents[0].Parts[0].InlineData.Data)
	require.Contains(t, contents[0].Parts[1].Text, "provided via image")
}

func TestBuildPromptAudioInstruction(t *testing.T) {
	contents, err := BuildPrompt(ExtractionRequest{
		Modality: ModalityAudio,
		Data:     []byte("audio bytes"),
		MimeType: "audio/mpeg",
	})
	require.NoError(t, err)
	require.Contains(t, contents[0].Parts[1].Text, "provided via audio")
}

func TestBuildPromptRejectsMismatches(t *testing.T) {
	cases := []struct {
		name string
		req  ExtractionRequest
	}{
		{"empty text", ExtractionRequest{Modality: ModalityText}},
		{"whitespace text", ExtractionRequest{Modality: ModalityText, Text: "   "}},
		{"text with binary payload", ExtractionRequest{Modality: ModalityText, Text: "ok", Data: []byte{1}}},
		{"image without payload", ExtractionRequest{Modality: ModalityImage, MimeType: "image/png"}},
		{"image without media type", ExtractionRequest{Modality: ModalityImage, Data: []byte{1}}},
		{"audio without payload", ExtractionRequest{Modality: ModalityAudio, MimeType: "audio/mpeg"}},
		{"unknown modality", ExtractionRequest{Modality: "video", Data: []byte{1}, MimeType: "video/mp4"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildPrompt(tc.req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
