package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/confidant-ai/confidant/pkg/core"
)

// turnInput is the decoded request payload for the chat and translator
// endpoints, which all accept JSON, form fields, or multipart with an
// optional audio file.
type turnInput struct {
	fields    map[string]string
	audio     io.ReadCloser
	audioName string
}

func (in *turnInput) field(name string) string {
	return strings.TrimSpace(in.fields[name])
}

func (in *turnInput) close() {
	if in.audio != nil {
		_ = in.audio.Close()
	}
}

func parseInput(r *http.Request, maxBytes int64) (*turnInput, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	in := &turnInput{fields: map[string]string{}}

	switch {
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return nil, core.NewInvalidRequestError("failed to parse multipart body")
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				in.fields[k] = vs[0]
			}
		}
		file, hdr, err := r.FormFile("audio")
		if err == nil {
			in.audio = file
			in.audioName = hdr.Filename
		} else if err != http.ErrMissingFile {
			return nil, core.NewInvalidRequestErrorWithParam("failed to read audio part", "audio")
		}
		return in, nil

	case mediaType == "application/json" || mediaType == "":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, core.NewInvalidRequestError("failed to read request body")
		}
		if len(body) == 0 {
			return in, nil
		}
		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, core.NewInvalidRequestError("request body must be a JSON object")
		}
		for k, v := range raw {
			switch val := v.(type) {
			case string:
				in.fields[k] = val
			case float64, bool:
				in.fields[k] = fmt.Sprintf("%v", val)
			}
		}
		return in, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, core.NewInvalidRequestError("failed to parse form body")
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				in.fields[k] = vs[0]
			}
		}
		return in, nil
	}
}
