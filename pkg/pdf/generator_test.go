package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	options := DefaultOptions()
	options.Compress = false
	gen := NewGenerator(options)

	out, err := gen.Generate(context.Background(), Document{
		Title:       "Signature Forensic Report",
		Subtitle:    "contract-scan.png",
		GeneratedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Footer:      "Sign Scan",
		Sections: []Section{
			{Heading: "Summary", Body: "The signature shows consistent slant and fluid strokes."},
		},
	})
	require.NoError(t, err)

	data, err := io.ReadAll(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "Signature Forensic Report")
	assert.Contains(t, string(data), "consistent slant")
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator(DefaultOptions()).Generate(ctx, Document{Title: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
