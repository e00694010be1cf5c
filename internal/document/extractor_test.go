package document

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectMime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		declared string
		filename string
		want     string
	}{
		{declared: "text/plain; charset=utf-8", filename: "cv.bin", want: MimePlain},
		{declared: "Application/PDF", filename: "", want: MimePDF},
		{declared: "application/octet-stream", filename: "CV.DOCX", want: MimeDOCX},
		{declared: "", filename: "cv.html", want: MimeHTML},
		{declared: "garbage;;", filename: "cv.txt", want: MimePlain},
		{declared: "", filename: "cv.odt", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMime(tt.declared, tt.filename), "%q %q", tt.declared, tt.filename)
	}
}

func TestExtractText_Plain(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	assert.Equal(t, "python developer", e.ExtractText([]byte("  python developer\n"), MimePlain))
	assert.Equal(t, "go  rust", e.ExtractText([]byte("go \xffrust"), MimePlain))
}

func TestExtractText_HTML(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>CV</title><style>p{color:red}</style></head>
<body><h1>Ada Lovelace</h1><script>var x = "hidden";</script><p>Python <b>FastAPI</b></p></body></html>`

	e := NewExtractor(nil)
	assert.Equal(t, "CV Ada Lovelace Python FastAPI", e.ExtractText([]byte(page), MimeHTML))
}

func TestExtractText_DOCX(t *testing.T) {
	t.Parallel()

	doc := buildDocx(t, `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Senior</w:t></w:r><w:r><w:t xml:space="preserve"> Python developer</w:t></w:r></w:p>
<w:p><w:r><w:t>SQL</w:t><w:tab/><w:t>FastAPI</w:t></w:r></w:p>
</w:body>
</w:document>`)

	e := NewExtractor(nil)
	assert.Equal(t, "Senior Python developer\nSQL\tFastAPI", e.ExtractText(doc, MimeDOCX))
}

func TestExtractText_FailuresYieldEmpty(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	e := NewExtractor(zap.New(core))

	assert.Equal(t, "", e.ExtractText([]byte("not a pdf"), MimePDF))
	assert.Equal(t, "", e.ExtractText([]byte("not a zip"), MimeDOCX))
	assert.Equal(t, "", e.ExtractText(buildDocx(t, "<w:document><w:p>"), MimeDOCX))
	assert.Equal(t, "", e.ExtractText([]byte("whatever"), "image/png"))
	assert.Equal(t, "", e.ExtractText(nil, ""))

	assert.Equal(t, 5, logs.Len())
}

func TestExtractText_DocxWithoutBody(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	assert.Equal(t, "", NewExtractor(nil).ExtractText(buf.Bytes(), MimeDOCX))
}

func TestExtractText_DocxExpansionCapped(t *testing.T) {
	t.Parallel()

	doc := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>`+
		strings.Repeat("python ", 200)+`</w:t></w:r></w:p></w:body></w:document>`)

	core, logs := observer.New(zap.WarnLevel)
	capped := NewExtractor(zap.New(core)).WithMaxExpandedBytes(256)
	assert.Equal(t, "", capped.ExtractText(doc, MimeDOCX))
	assert.Equal(t, 1, logs.Len())

	assert.Contains(t, NewExtractor(nil).ExtractText(doc, MimeDOCX), "python python")
	assert.Contains(t, NewExtractor(nil).WithMaxExpandedBytes(0).ExtractText(doc, MimeDOCX), "python")
}

func TestCapReader(t *testing.T) {
	t.Parallel()

	b, err := io.ReadAll(&capReader{r: strings.NewReader("12345"), left: 5})
	require.NoError(t, err)
	assert.Equal(t, "12345", string(b))

	b, err = io.ReadAll(&capReader{r: strings.NewReader("123456"), left: 5})
	assert.ErrorIs(t, err, errTooLarge)
	assert.LessOrEqual(t, len(b), 6)
}
