package gemini

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

// ErrUnsupportedResume reports a resume format the model cannot consume.
var ErrUnsupportedResume = errors.New("unsupported resume format")

// BuildResumeFile converts downloaded resume bytes into a model attachment.
// PDFs pass through unchanged; .docx files are flattened to plain text since
// the model does not accept raw OOXML; plain text passes through.
func BuildResumeFile(filename string, data []byte) (summary.ResumeFile, error) {
	if len(data) == 0 {
		return summary.ResumeFile{}, fmt.Errorf("resume %s: empty file", filename)
	}
	ext := strings.ToLower(path.Ext(filename))
	detected := http.DetectContentType(data)

	switch {
	case ext == ".pdf" || strings.HasPrefix(detected, "application/pdf"):
		return summary.ResumeFile{Filename: filename, MIMEType: "application/pdf", Data: data}, nil
	case ext == ".docx":
		text, err := docxToText(data)
		if err != nil {
			return summary.ResumeFile{}, fmt.Errorf("resume %s: %w", filename, err)
		}
		return summary.ResumeFile{Filename: filename, MIMEType: "text/plain", Data: []byte(text)}, nil
	case ext == ".txt" || strings.HasPrefix(detected, "text/plain"):
		return summary.ResumeFile{Filename: filename, MIMEType: "text/plain", Data: data}, nil
	default:
		return summary.ResumeFile{}, fmt.Errorf("resume %s (%s): %w", filename, detected, ErrUnsupportedResume)
	}
}

// docxToText extracts the visible text of word/document.xml, with paragraph
// boundaries as newlines.
func docxToText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx has no word/document.xml")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
