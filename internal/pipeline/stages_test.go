package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/ironsheep/pgm-stego/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedAndExtractFiles(t *testing.T) {
	cfg, dir := testConfig(t)

	res, err := EmbedFiles(cfg.Cover, cfg.Secret, filepath.Join(dir, "out.pgm"), raster.FormatText, dims2x2)
	require.NoError(t, err)
	assert.Equal(t, "text", res.Format)
	assert.Equal(t, 4, res.Distortion.Changed)

	stegoImg, err := raster.LoadTextFile(res.Output, dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x31, 0xF9, 0x07, 0xA0}, stegoImg.Pix)

	ext, err := ExtractFile(res.Output, filepath.Join(dir, "secret.out.pgm"), raster.FormatBinary, dims2x2)
	require.NoError(t, err)
	assert.Equal(t, dims2x2, ext.Dims)

	recovered, err := raster.LoadBinaryFile(ext.Output, dims2x2)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x10, 0x90, 0x70, 0x00}, recovered.Pix)
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "x.pgm"), "out.pgm", raster.FormatText, dims2x2)
	require.Error(t, err)
	assert.Equal(t, StageDecodeStego, FailedStage(err))
}

func TestCompareFiles(t *testing.T) {
	cfg, _ := testConfig(t)
	st, err := CompareFiles(cfg.Cover, cfg.Cover, dims2x2)
	require.NoError(t, err)
	assert.True(t, st.Identical)

	st, err = CompareFiles(cfg.Cover, cfg.Secret, dims2x2)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Changed)
}
