package detector

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageData(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{"data URI", "data:image/jpeg;base64," + encoded, raw, false},
		{"bare base64", encoded, raw, false},
		{"unpadded base64", base64.RawStdEncoding.EncodeToString(raw), raw, false},
		{"empty string", "", nil, true},
		{"data URI without comma", "data:image/jpeg;base64", nil, true},
		{"data URI with empty payload", "data:image/jpeg;base64,", nil, true},
		{"not base64", "!!!definitely not base64!!!", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeImageData(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScriptErrorMessage(t *testing.T) {
	err := &ScriptError{ExitCode: 2, Stderr: "ModuleNotFoundError: no module named cv2\n"}
	assert.Contains(t, err.Error(), "code 2")
	assert.Contains(t, err.Error(), "cv2")
}
