package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pharmacy-api/pkg/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestValidateImageAcceptsPNG(t *testing.T) {
	assert.NoError(t, ValidateImage(pngHeader))
}

func TestValidateImageRejectsEmpty(t *testing.T) {
	err := ValidateImage(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
}

func TestValidateImageRejectsOversized(t *testing.T) {
	big := make([]byte, MaxImageSize+1)
	copy(big, pngHeader)

	err := ValidateImage(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10MB")
}

func TestValidateImageRejectsNonImage(t *testing.T) {
	err := ValidateImage([]byte("Patient: John Doe\nParacetamol 500mg"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestValidateImageSniffsContentNotExtension(t *testing.T) {
	// A PDF is not acceptable no matter what the upload was named.
	err := ValidateImage([]byte("%PDF-1.4 fake document body"))
	require.Error(t, err)
}
