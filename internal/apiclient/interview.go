package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/jonathan/hr-console/internal/types"
)

const (
	generatePath      = "/api/interview-questions/generate"
	compatibilityPath = "/api/interview-questions/candidate-compatibility"
	downloadPDFPath   = "/api/interview-questions/download-pdf"
)

// form accumulates a multipart body.
type form struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func newForm() *form {
	f := &form{}
	f.w = multipart.NewWriter(&f.buf)
	return f
}

func (f *form) field(name, value string) error {
	return f.w.WriteField(name, value)
}

func (f *form) jsonField(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return f.w.WriteField(name, string(raw))
}

// file attaches path under name with its detected content type.
func (f *form) file(name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, filepath.Base(path)))
	header.Set("Content-Type", mtype.String())
	part, err := f.w.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}

func (f *form) close() (io.Reader, string, error) {
	if err := f.w.Close(); err != nil {
		return nil, "", err
	}
	return &f.buf, f.w.FormDataContentType(), nil
}

func (c *Client) formError(path string, err error) error {
	return &Error{Method: http.MethodPost, URL: c.urlFor(path, nil), Message: "failed to build form", Cause: err}
}

// GenerateQuestions posts the generation form. A backend that answers with
// its error shape yields a result with OK false and a nil error; transport
// failures and other unusable responses are returned as *Error.
func (c *Client) GenerateQuestions(ctx context.Context, req types.GenerateRequest) (types.GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return types.GenerateResult{}, err
	}

	f := newForm()
	err := f.field("role", req.Role)
	if err == nil {
		err = f.jsonField("skills", req.Skills)
	}
	if err == nil {
		err = f.field("questionComplexity", strconv.Itoa(req.QuestionComplexity))
	}
	if err == nil {
		err = f.field("numberOfQuestions", strconv.Itoa(req.NumberOfQuestions))
	}
	if err == nil {
		if instructions := strings.TrimSpace(req.CustomInstructions); instructions != "" {
			err = f.field("customInstructions", instructions)
		}
	}
	if err == nil && req.ResumePath != "" {
		err = f.file("pdf", req.ResumePath)
	}
	if err != nil {
		return types.GenerateResult{}, c.formError(generatePath, err)
	}
	body, contentType, err := f.close()
	if err != nil {
		return types.GenerateResult{}, c.formError(generatePath, err)
	}

	in := call{method: http.MethodPost, endpoint: generatePath, path: generatePath, body: body, contentType: contentType}
	resp, err := c.send(ctx, in)
	if err != nil {
		return types.GenerateResult{}, err
	}

	if result, ok := generateError(resp.body); ok {
		return result, nil
	}
	if !resp.ok() {
		return types.GenerateResult{}, statusError(in, c.urlFor(generatePath, nil), resp)
	}

	var envelope struct {
		Data *types.GeneratedQuestions `json:"data"`
	}
	if err := json.Unmarshal(resp.body, &envelope); err != nil {
		return types.GenerateResult{}, malformed(http.MethodPost, c.urlFor(generatePath, nil), resp.status, err)
	}
	if envelope.Data == nil {
		// A success without data carries no questions.
		return types.GenerateResult{OK: true, Data: types.GeneratedQuestions{Questions: []types.Question{}}}, nil
	}
	return types.GenerateResult{OK: true, Data: *envelope.Data}, nil
}

// generateError recognises the two error shapes the generation backend
// uses: {"success": false, "error": ..., "reason": ...} and
// [{"error": ..., "reason": ...}].
func generateError(body []byte) (types.GenerateResult, bool) {
	type errorShape struct {
		Success *bool  `json:"success"`
		Error   string `json:"error"`
		Reason  string `json:"reason"`
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return types.GenerateResult{}, false
	}

	switch trimmed[0] {
	case '{':
		var shape errorShape
		if err := json.Unmarshal(trimmed, &shape); err != nil {
			return types.GenerateResult{}, false
		}
		if shape.Success != nil && !*shape.Success && shape.Error != "" {
			return types.GenerateResult{Error: shape.Error, Reason: shape.Reason}, true
		}
	case '[':
		var shapes []errorShape
		if err := json.Unmarshal(trimmed, &shapes); err != nil || len(shapes) == 0 {
			return types.GenerateResult{}, false
		}
		if shapes[0].Error != "" {
			return types.GenerateResult{Error: shapes[0].Error, Reason: shapes[0].Reason}, true
		}
	}
	return types.GenerateResult{}, false
}

// CheckCompatibility posts a resume with a role and skills and returns the
// compatibility report.
func (c *Client) CheckCompatibility(ctx context.Context, req types.CompatibilityRequest) (*types.CompatibilityReport, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := newForm()
	err := f.file("pdf", req.ResumePath)
	if err == nil {
		err = f.field("role", req.Role)
	}
	if err == nil {
		err = f.jsonField("skills", req.Skills)
	}
	if err != nil {
		return nil, c.formError(compatibilityPath, err)
	}
	body, contentType, err := f.close()
	if err != nil {
		return nil, c.formError(compatibilityPath, err)
	}

	in := call{method: http.MethodPost, endpoint: compatibilityPath, path: compatibilityPath, body: body, contentType: contentType}
	resp, err := c.send(ctx, in)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, statusError(in, c.urlFor(compatibilityPath, nil), resp)
	}

	var out types.CompatibilityReport
	if err := decodeData(resp.body, &out); err != nil {
		return nil, malformed(http.MethodPost, c.urlFor(compatibilityPath, nil), resp.status, err)
	}
	return &out, nil
}

// DownloadPDF renders generated questions as a PDF and returns its bytes.
func (c *Client) DownloadPDF(ctx context.Context, req types.PDFRequest, withAnswers bool) ([]byte, error) {
	query := url.Values{}
	query.Set("withAnswers", strconv.FormatBool(withAnswers))

	resp, err := c.do(ctx, http.MethodPost, downloadPDFPath, downloadPDFPath, query, req)
	if err != nil {
		return nil, err
	}
	if len(resp.body) == 0 {
		return nil, &Error{Method: http.MethodPost, URL: c.urlFor(downloadPDFPath, query), StatusCode: resp.status, Message: "empty PDF response"}
	}
	return resp.body, nil
}
