package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFileDecode(t *testing.T) {
	tests := []struct {
		name     string
		file     ImageFile
		wantMIME string
	}{
		{"plain base64", ImageFile{Name: "a.png", MIMEType: "image/png", Base64: "ZnJhbWU="}, "image/png"},
		{"data url", ImageFile{Name: "a.jpg", Base64: "data:image/jpeg;base64,ZnJhbWU="}, "image/jpeg"},
		{"explicit type wins", ImageFile{Name: "a.webp", MIMEType: "image/webp", Base64: "data:image/png;base64,ZnJhbWU="}, "image/webp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, data, err := tt.file.Decode()
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mimeType)
			assert.Equal(t, []byte("frame"), data)
		})
	}
}

func TestImageFileDecode_Invalid(t *testing.T) {
	f := ImageFile{Name: "broken.png", Base64: "@@@"}
	_, _, err := f.Decode()
	assert.ErrorContains(t, err, `decode image "broken.png"`)
}
