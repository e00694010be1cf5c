package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"jobmatch/internal/logger"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	MimePlain = "text/plain"
	MimeHTML  = "text/html"
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultMaxExpandedBytes caps how much a compressed document may expand
// while being read.
const DefaultMaxExpandedBytes = 64 << 20

var (
	errUnsupported = errors.New("unsupported document type")
	errTooLarge    = errors.New("document expands beyond the size limit")
)

var extensionMimes = map[string]string{
	".txt":  MimePlain,
	".text": MimePlain,
	".md":   MimePlain,
	".htm":  MimeHTML,
	".html": MimeHTML,
	".pdf":  MimePDF,
	".docx": MimeDOCX,
}

// DetectMime normalizes the declared content type and falls back to the file
// extension when the declaration is missing or generic.
func DetectMime(declared, filename string) string {
	if mt, _, err := mime.ParseMediaType(strings.TrimSpace(declared)); err == nil {
		mt = strings.ToLower(mt)
		if mt != "" && mt != "application/octet-stream" {
			return mt
		}
	}
	return extensionMimes[strings.ToLower(filepath.Ext(filename))]
}

// Extractor turns uploaded bytes into plain text for keyword extraction.
type Extractor struct {
	maxExpanded int64
	logger      *zap.Logger
}

func NewExtractor(log *zap.Logger) *Extractor {
	return &Extractor{maxExpanded: DefaultMaxExpandedBytes, logger: logger.Named(log, "document")}
}

// WithMaxExpandedBytes sets the decompressed size cap. n <= 0 keeps the
// default.
func (e *Extractor) WithMaxExpandedBytes(n int64) *Extractor {
	if n > 0 {
		e.maxExpanded = n
	}
	return e
}

// ExtractText never fails: unsupported types, parser errors and parser panics
// all yield "" and a warning.
func (e *Extractor) ExtractText(data []byte, mimeType string) (text string) {
	log := e.logger.With(zap.String("mime", mimeType), zap.Int("bytes", len(data)))
	defer func() {
		if r := recover(); r != nil {
			log.Warn("text extraction panicked", zap.Any("panic", r))
			text = ""
		}
	}()

	var err error
	switch mimeType {
	case MimePlain:
		text = plainText(data)
	case MimeHTML:
		text, err = htmlText(data)
	case MimePDF:
		text, err = pdfText(data)
	case MimeDOCX:
		text, err = docxText(data, e.maxExpanded)
	default:
		err = errUnsupported
	}
	if err != nil {
		log.Warn("text extraction failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

func plainText(data []byte) string {
	s := string(data)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, " ")
	}
	return s
}

var skippedHTMLElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

func htmlText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	parts := make([]string, 0)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedHTMLElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(parts, " "), nil
}

func pdfText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}

// docxText reads word/document.xml: w:t runs become text, w:tab a tab and
// the end of each w:p paragraph a newline.
func docxText(data []byte, maxExpanded int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return "", errors.New("docx: word/document.xml missing")
	}
	if body.UncompressedSize64 > uint64(maxExpanded) {
		return "", fmt.Errorf("docx: %w", errTooLarge)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	// the header size can lie, so the stream itself is capped too
	dec := xml.NewDecoder(&capReader{r: rc, left: maxExpanded})
	inText := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

// capReader fails once more than left bytes have been read.
type capReader struct {
	r    io.Reader
	left int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.left < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > c.left+1 {
		p = p[:c.left+1]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		return n, errTooLarge
	}
	return n, err
}
