package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_PNG(t *testing.T) {
	engine := NewEngine()

	data, mime, err := engine.Encode("https://example.com", FormatPNG, Options{
		Size:       128,
		ErrorLevel: "M",
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestEncode_SVG(t *testing.T) {
	engine := NewEngine()

	data, mime, err := engine.Encode("hello", FormatSVG, Options{
		DotColor:        "#112233",
		BackgroundColor: "#ffffff",
	})
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", mime)
	assert.Contains(t, string(data), `fill="#112233"`)
	assert.Contains(t, string(data), "<svg")
}

func TestEncode_JPEG(t *testing.T) {
	engine := NewEngine()

	data, mime, err := engine.Encode("hello", FormatJPEG, Options{})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.NotEmpty(t, data)
}

func TestEncode_UnsupportedFormat(t *testing.T) {
	engine := NewEngine()

	_, _, err := engine.Encode("hello", "gif", Options{})
	assert.Error(t, err)
}

func TestEncode_BrokenLogo(t *testing.T) {
	engine := NewEngine()

	_, _, err := engine.Encode("hello", FormatPNG, Options{Logo: "not-base64!!"})
	assert.Error(t, err)
}

func TestRecoveryLevel_DefaultsToHighest(t *testing.T) {
	cases := []struct {
		name  string
		level string
	}{
		{name: "неизвестный уровень", level: "X"},
		{name: "пустой уровень", level: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, recoveryLevel("H"), recoveryLevel(tc.level))
		})
	}
}
