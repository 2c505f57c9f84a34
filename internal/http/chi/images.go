package chi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/internal/validator"
)

/* Image intake DTOs
 * n8n workflows post forms, the browser extension posts JSON. Field names
 * differ between callers, so every known spelling is accepted.
 */

type imageForm struct {
	Image        string `schema:"image"`
	Base64Image  string `schema:"base64_image"`
	Base64Camel  string `schema:"base64Image"`
	FileName     string `schema:"fileName"`
	OriginalData string `schema:"originalData"`
	Description  string `schema:"description"`
}

type imageJSON struct {
	Image        string          `json:"image"`
	Base64Image  string          `json:"base64_image"`
	Base64Camel  string          `json:"base64Image"`
	FileName     string          `json:"fileName"`
	OriginalData json.RawMessage `json:"originalData"`
	Description  string          `json:"description"`
}

// receiveInput is the normalized image request
type receiveInput struct {
	Base64       string `validate:"required"`
	FileName     string `validate:"max=255"`
	OriginalData json.RawMessage
}

type imageResponse struct {
	Success      bool            `json:"success"`
	FileName     string          `json:"fileName"`
	DownloadURL  string          `json:"downloadUrl"`
	ViewURL      string          `json:"viewUrl"`
	OriginalData json.RawMessage `json:"originalData,omitempty"`
	Message      string          `json:"message"`
}

var formDecoder = newDecoder()

// receiveImage handles POST /v1/images and the legacy receive paths
func receiveImage(gw gateway.UseCase, maxUploadBytes int64, publicBaseURL string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// base64 inflates by 4/3, plus room for the other form fields
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes*4/3+(64<<10))

		in, err := decodeImageRequest(r)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				badRequest(w, r, "Slika je prevelika", err)
				return
			}
			badRequest(w, r, "Neispravni podaci zahteva", err)
			return
		}
		if err := validator.Validate(in); err != nil {
			badRequest(w, r, "BASE64 slika je obavezna", err)
			return
		}

		env := gw.Handle(r.Context(), gateway.Request{
			Action:        gateway.Receive,
			ImageBase64:   in.Base64,
			ImageFileName: in.FileName,
		})
		if !env.Success {
			writeError(w, r, env.Err)
			return
		}
		stored, ok := env.Data.(image.StoredImage)
		if !ok {
			writeError(w, r, errors.New("unexpected receive result"))
			return
		}

		base := publicBaseURL
		if base == "" {
			base = requestBaseURL(r)
		}
		writeJSON(w, r, http.StatusOK, imageResponse{
			Success:      true,
			FileName:     stored.FileName,
			DownloadURL:  strings.TrimSuffix(base, "/") + stored.RetrievalPath,
			ViewURL:      "/view-image/" + stored.FileName,
			OriginalData: in.OriginalData,
			Message:      "Slika je uspešno generisana i sačuvana!",
		})
	})
}

// decodeImageRequest reads form fields first and falls back to a JSON body,
// so callers that omit or mislabel the Content-Type are still understood.
func decodeImageRequest(r *http.Request) (receiveInput, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return receiveInput{}, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeImageJSON(raw)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return receiveInput{}, err
		}
		if err := r.ParseForm(); err != nil {
			return receiveInput{}, err
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var form imageForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		return receiveInput{}, err
	}
	in := receiveInput{
		Base64:       firstNonEmpty(form.Image, form.Base64Image, form.Base64Camel),
		FileName:     form.FileName,
		OriginalData: originalData(json.RawMessage(form.OriginalData)),
	}
	if in.Base64 == "" && json.Valid(raw) {
		return decodeImageJSON(raw)
	}
	return in, nil
}

func decodeImageJSON(raw []byte) (receiveInput, error) {
	var req imageJSON
	if err := json.Unmarshal(raw, &req); err != nil {
		return receiveInput{}, err
	}
	return receiveInput{
		Base64:       firstNonEmpty(req.Image, req.Base64Image, req.Base64Camel),
		FileName:     req.FileName,
		OriginalData: originalData(req.OriginalData),
	}, nil
}

// originalData echoes caller context back only when it is valid JSON
func originalData(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

// serveImage handles the image view and download paths. ?download=1 forces
// an attachment on view paths.
func serveImage(images image.UseCase, attachment bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "fileName")

		f, err := images.Open(r.Context(), name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			writeError(w, r, err)
			return
		}

		contentType := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
		if !strings.HasPrefix(contentType, "image/") {
			contentType = "image/png"
		}
		w.Header().Set("Content-Type", contentType)

		disposition := "inline"
		if attachment || r.URL.Query().Get("download") == "1" {
			disposition = "attachment"
		}
		w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))

		oplog := httplog.LogEntry(r.Context())
		oplog.Debug().Str("file", name).Str("disposition", disposition).Msg("serving image")
		http.ServeContent(w, r, name, info.ModTime(), f)
	})
}
