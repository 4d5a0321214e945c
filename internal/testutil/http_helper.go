// Package testutil provides utility functions for testing HTTP handlers.
package testutil

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/gin-gonic/gin"
)

// FilePart is a file to attach to a multipart request.
type FilePart struct {
	Filename    string
	ContentType string
	Content     []byte
}

// MakeRequest performs a bodyless request (GET/DELETE) against the engine.
func MakeRequest(r *gin.Engine, method, endpoint, authToken string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req, _ := http.NewRequest(method, endpoint, nil)
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}

// MakeMultipartRequest builds a multipart form from the given fields and
// files and performs the request against the engine.
func MakeMultipartRequest(r *gin.Engine, method, endpoint, authToken string, fields map[string]string, files map[string]FilePart) (*httptest.ResponseRecorder, map[string]interface{}) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for name, value := range fields {
		_ = writer.WriteField(name, value)
	}
	for name, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			`form-data; name="`+name+`"; filename="`+file.Filename+`"`)
		if file.ContentType != "" {
			header.Set("Content-Type", file.ContentType)
		}
		part, _ := writer.CreatePart(header)
		_, _ = part.Write(file.Content)
	}
	_ = writer.Close()

	req, _ := http.NewRequest(method, endpoint, strings.NewReader(body.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	resp := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	return rec, resp
}
