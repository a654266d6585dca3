package domain

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewLogo(t *testing.T) {
	data := pngBytes(t)

	logo, err := NewLogo(data)
	require.NoError(t, err)
	assert.Equal(t, "image/png", logo.MIMEType)
	assert.Equal(t, data, logo.Data)

	data[0] = 0
	assert.NotEqual(t, data[0], logo.Data[0])
}

func TestNewLogo_WebP(t *testing.T) {
	logo, err := NewLogo([]byte("RIFF\x10\x00\x00\x00WEBPVP8 "))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", logo.MIMEType)
}

func TestNewLogo_Rejects(t *testing.T) {
	oversized := append(pngBytes(t), make([]byte, MaxLogoSize)...)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image")},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n")},
		{"too large", oversized},
		{"svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4"></svg>`)},
		{"icon", []byte{0, 0, 1, 0, 1, 0, 16, 16, 0, 0, 1, 0, 32, 0, 0, 0, 0, 0, 22, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logo, err := NewLogo(tt.data)
			assert.Nil(t, logo)
			assert.True(t, errors.Is(err, ErrUnsupportedAsset), "got %v", err)
		})
	}
}

func TestLogoClone(t *testing.T) {
	var nilLogo *Logo
	assert.Nil(t, nilLogo.Clone())

	logo := &Logo{Data: []byte{1, 2}, MIMEType: "image/jpeg"}
	c := logo.Clone()
	c.Data[0] = 7
	assert.Equal(t, byte(1), logo.Data[0])
	assert.Equal(t, "image/jpeg", c.MIMEType)
}
