package cameriere

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
)

// FilePart is a file attached to a multipart form.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// MultipartBody is a fully encoded multipart form. It is sent verbatim and
// can be replayed when a request is retried after a token refresh.
type MultipartBody struct {
	data        []byte
	contentType string
}

// NewMultipartBody encodes fields (in key order) followed by files.
func NewMultipartBody(fields map[string]string, files ...FilePart) (*MultipartBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, fmt.Errorf("create file part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("copy file %s: %w", f.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &MultipartBody{data: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func (m *MultipartBody) ContentType() string { return m.contentType }

func (m *MultipartBody) Len() int { return len(m.data) }
