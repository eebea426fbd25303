package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joescharf/issues/internal/models"
)

const (
	maxBodyBytes  = 1 << 20
	maxFormMemory = 1 << 20
)

// requestBody holds the decoded fields of a JSON or form request body. A key
// is present only if the client sent it.
type requestBody map[string]any

// decodeBody reads a JSON object, urlencoded form or multipart form body.
// An empty body decodes to no fields.
func decodeBody(r *http.Request) (requestBody, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		// ParseForm ignores DELETE bodies, so parse the query string directly.
		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		values, err := url.ParseQuery(string(data))
		if err != nil {
			return nil, fmt.Errorf("parse form: %w", err)
		}
		return formBody(values), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		return formBody(r.MultipartForm.Value), nil
	}

	body := requestBody{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return requestBody{}, nil
		}
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	if body == nil {
		body = requestBody{}
	}
	return body, nil
}

func formBody(values map[string][]string) requestBody {
	body := make(requestBody, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			body[key] = vs[0]
		}
	}
	return body
}

// text returns the string value of key, or nil if it was not sent. JSON null
// counts as not sent; numbers and booleans keep their JSON text.
func (b requestBody) text(key string) (*string, error) {
	v, ok := b[key]
	if !ok || v == nil {
		return nil, nil
	}
	var s string
	switch v := v.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case bool:
		s = strconv.FormatBool(v)
	default:
		return nil, fmt.Errorf("invalid %s value", key)
	}
	return &s, nil
}

// falsy reports whether v is null, false, zero, or the empty string.
func falsy(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	}
	return false
}

// required returns the text of key, or "" when the value is falsy so that the
// store rejects it as missing.
func (b requestBody) required(key string) (string, error) {
	if falsy(b[key]) {
		return "", nil
	}
	return b.textOrEmpty(key)
}

func (b requestBody) textOrEmpty(key string) (string, error) {
	p, err := b.text(key)
	if p == nil {
		return "", err
	}
	return *p, nil
}

// open accepts a JSON boolean or the strings "true" and "false". An empty
// string, as sent by a blank form field, counts as not sent.
func (b requestBody) open() (*bool, error) {
	v, ok := b["open"]
	if !ok || v == nil {
		return nil, nil
	}
	switch v := v.(type) {
	case bool:
		return &v, nil
	case string:
		switch v {
		case "":
			return nil, nil
		case "true", "false":
			open := v == "true"
			return &open, nil
		}
	}
	return nil, errors.New("invalid open value")
}

func (b requestBody) id() (string, error) {
	return b.required("_id")
}

func (b requestBody) newIssue() (models.NewIssue, error) {
	var in models.NewIssue
	for _, f := range []struct {
		key      string
		target   *string
		required bool
	}{
		{"issue_title", &in.IssueTitle, true},
		{"issue_text", &in.IssueText, true},
		{"created_by", &in.CreatedBy, true},
		{"assigned_to", &in.AssignedTo, false},
		{"status_text", &in.StatusText, false},
	} {
		get := b.textOrEmpty
		if f.required {
			get = b.required
		}
		v, err := get(f.key)
		if err != nil {
			return models.NewIssue{}, err
		}
		*f.target = v
	}
	return in, nil
}

func (b requestBody) update() (models.IssueUpdate, error) {
	var upd models.IssueUpdate
	for _, f := range []struct {
		key    string
		target **string
	}{
		{"issue_title", &upd.IssueTitle},
		{"issue_text", &upd.IssueText},
		{"created_by", &upd.CreatedBy},
		{"assigned_to", &upd.AssignedTo},
		{"status_text", &upd.StatusText},
	} {
		v, err := b.text(f.key)
		if err != nil {
			return models.IssueUpdate{}, err
		}
		*f.target = v
	}

	open, err := b.open()
	if err != nil {
		return models.IssueUpdate{}, err
	}
	upd.Open = open
	return upd, nil
}
