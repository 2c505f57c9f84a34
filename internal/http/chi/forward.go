package chi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/internal/validator"
)

// forwardQuery holds the optional query parameters of a forward call
type forwardQuery struct {
	TimeoutSeconds int `schema:"timeout" validate:"gte=0"`
}

// uploadedFile is the JSON form of a multipart file sent to n8n
type uploadedFile struct {
	FileName string `json:"filename"`
	Content  string `json:"content"`
	MimeType string `json:"mime_type"`
}

var allowedUploadTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var queryDecoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// forward handles POST /v1/forward/{key} and the endpoint aliases.
// fixedKey is set for aliases, which carry no key in the path.
func forward(gw gateway.UseCase, fixedKey string, maxUploadBytes int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fixedKey
		if key == "" {
			key = chi.URLParam(r, "key")
		}

		var q forwardQuery
		if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
			badRequest(w, r, "Neispravan parametar timeout", err)
			return
		}
		if err := validator.Validate(q); err != nil {
			badRequest(w, r, "Neispravan parametar timeout", err)
			return
		}
		timeout := time.Duration(q.TimeoutSeconds) * time.Second
		if timeout > gateway.MaxCallTimeout {
			badRequest(w, r, fmt.Sprintf("Timeout ne može biti veći od %d sekundi", int(gateway.MaxCallTimeout.Seconds())),
				fmt.Errorf("timeout %s exceeds %s", timeout, gateway.MaxCallTimeout))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
		payload, err := readPayload(r, maxUploadBytes)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || errors.Is(err, errFileTooLarge) {
				badRequest(w, r, fmt.Sprintf("Fajl je prevelik. Maksimalna veličina je %dMB", maxUploadBytes>>20), err)
				return
			}
			if errors.Is(err, errFileType) {
				badRequest(w, r, "Dozvoljena su samo PNG, JPG i JPEG fajlovi", err)
				return
			}
			badRequest(w, r, "Neispravni podaci zahteva", err)
			return
		}

		env := gw.Handle(r.Context(), gateway.Request{
			Action:  gateway.Forward,
			Key:     key,
			Payload: payload,
			Timeout: timeout,
		})
		writeEnvelope(w, r, env)
	})
}

var (
	errFileTooLarge = errors.New("uploaded file too large")
	errFileType     = errors.New("uploaded file type not allowed")
)

// readPayload returns the JSON body to forward. Form submissions are
// converted to a JSON object of string fields and encoded files.
func readPayload(r *http.Request, maxUploadBytes int64) (json.RawMessage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, fmt.Errorf("parsing multipart form: %w", err)
		}
		defer r.MultipartForm.RemoveAll()
		fields := formFields(r.MultipartForm.Value)
		for name, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			file, err := encodeUpload(headers[0], maxUploadBytes)
			if err != nil {
				return nil, err
			}
			fields[name] = file
		}
		return json.Marshal(fields)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parsing form: %w", err)
		}
		return json.Marshal(formFields(r.PostForm))
	default:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		return body, nil
	}
}

func formFields(values map[string][]string) map[string]any {
	fields := make(map[string]any, len(values))
	for k, v := range values {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields
}

func encodeUpload(h *multipart.FileHeader, maxUploadBytes int64) (uploadedFile, error) {
	if h.Size > maxUploadBytes {
		return uploadedFile{}, fmt.Errorf("%w: %s is %d bytes", errFileTooLarge, h.Filename, h.Size)
	}
	mimeType, ok := allowedUploadTypes[strings.ToLower(filepath.Ext(h.Filename))]
	if !ok {
		return uploadedFile{}, fmt.Errorf("%w: %s", errFileType, h.Filename)
	}

	f, err := h.Open()
	if err != nil {
		return uploadedFile{}, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return uploadedFile{}, fmt.Errorf("reading upload: %w", err)
	}
	return uploadedFile{
		FileName: h.Filename,
		Content:  base64.StdEncoding.EncodeToString(data),
		MimeType: mimeType,
	}, nil
}
