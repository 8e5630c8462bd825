package source

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `<?xml version="1.0"?><LexicalResource><Lexicon/></LexicalResource>`

func compress(t *testing.T, format Format, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	switch format {
	case FormatPlain:
		return data
	case FormatGzip:
		w = gzip.NewWriter(&buf)
	case FormatZstd:
		zw, err := zstd.NewWriter(&buf)
		require.NoError(t, err)
		w = zw
	case FormatLZ4:
		w = lz4.NewWriter(&buf)
	default:
		t.Fatalf("unsupported format %q", format)
	}

	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatAuto, false},
		{"AUTO", FormatAuto, false},
		{"xml", FormatPlain, false},
		{"gz", FormatGzip, false},
		{"zst", FormatZstd, false},
		{"lz4", FormatLZ4, false},
		{"bzip2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatGzip, FormatFromPath("saldo.xml.gz"))
	assert.Equal(t, FormatZstd, FormatFromPath("/data/saldo.xml.ZST"))
	assert.Equal(t, FormatLZ4, FormatFromPath("saldo.lz4"))
	assert.Equal(t, FormatPlain, FormatFromPath("saldo.xml"))
	assert.Equal(t, FormatAuto, FormatFromPath("saldo"))
}

func TestOpen_DecompressesByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		file   string
		format Format
	}{
		{"plain", "saldo.xml", FormatPlain},
		{"gzip", "saldo.xml.gz", FormatGzip},
		{"zstd", "saldo.xml.zst", FormatZstd},
		{"lz4", "saldo.xml.lz4", FormatLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, compress(t, tt.format, []byte(payload)), 0o644))

			rc, err := Open(path, FormatAuto)
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestNewReader_SniffsMagicBytes(t *testing.T) {
	t.Parallel()

	for _, format := range []Format{FormatPlain, FormatGzip, FormatZstd, FormatLZ4} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			rc, err := NewReader(bytes.NewReader(compress(t, format, []byte(payload))), FormatAuto)
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, payload, string(got))
		})
	}
}

func TestOpen_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "nope.xml"), FormatAuto)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_ExplicitFormatMismatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "saldo.xml")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	_, err := Open(path, FormatGzip)
	require.Error(t, err)
}
