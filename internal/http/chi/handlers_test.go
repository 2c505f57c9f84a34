package chi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/gateway/mocks"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/image/filesystem"
	"github.com/marcelsud/n8n-gateway/metrics"
	"github.com/marcelsud/n8n-gateway/preference"
	prefmocks "github.com/marcelsud/n8n-gateway/preference/mocks"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/*
 * The facade and the preference service are mocked; images are served from a
 * real store in a temp directory and stats come from a miniredis collector.
 */

type testAPI struct {
	handler http.Handler
	gateway *mocks.UseCase
	prefs   *prefmocks.UseCase
	images  *image.Service
	redis   *miniredis.Miniredis
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	registry, err := endpoints.NewRegistry([]endpoints.Endpoint{
		{
			Key: "translator", URL: "https://n8n.example.com/webhook/t", Timeout: 30 * time.Second,
			Aliases: []string{"/api/translate"},
		},
		{
			Key: "product_image", URL: "https://n8n.example.com/webhook/p", Timeout: 60 * time.Second,
		},
	})
	require.NoError(t, err)

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	api := testAPI{
		gateway: mocks.NewUseCase(t),
		prefs:   prefmocks.NewUseCase(t),
		images:  image.NewService(filesystem.NewStore(t.TempDir()), "/download-image"),
		redis:   s,
	}
	api.handler = Handlers(context.Background(), Options{
		Gateway:        api.gateway,
		Images:         api.images,
		Preferences:    api.prefs,
		Registry:       registry,
		Stats:          metrics.NewRedisCollector(client, registry, zerolog.Nop()),
		Logger:         zerolog.Nop(),
		MaxUploadBytes: 1 << 20,
	})
	return api
}

func (a testAPI) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func matchRequest(fn func(gateway.Request) bool) any {
	return mock.MatchedBy(fn)
}

func TestForwardHandler(t *testing.T) {
	t.Run("success - JSON body", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			return req.Action == gateway.Forward && req.Key == "translator" &&
				string(req.Payload) == `{"text":"zdravo"}` && req.Timeout == 0
		})).Return(gateway.Envelope{Success: true, Data: "hello", UpstreamStatus: 200})

		w := api.do(t, http.MethodPost, "/v1/forward/translator", strings.NewReader(`{"text":"zdravo"}`), "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":"hello","upstreamStatus":200}`, w.Body.String())
	})

	t.Run("success - legacy alias uses the endpoint key", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			return req.Key == "translator"
		})).Return(gateway.Envelope{Success: true, Data: "hello"})

		w := api.do(t, http.MethodPost, "/api/translate", strings.NewReader(`{"text":"x"}`), "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success - timeout query parameter", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			return req.Timeout == 5*time.Second
		})).Return(gateway.Envelope{Success: true})

		w := api.do(t, http.MethodPost, "/v1/forward/translator?timeout=5", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("success - fallback is flagged", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: true, Data: "demo", IsFallback: true})

		w := api.do(t, http.MethodPost, "/v1/forward/translator", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["isFallback"])
	})

	t.Run("success - multipart form with an image", func(t *testing.T) {
		api := newTestAPI(t)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("description", "crveni patike"))
		fw, err := mw.CreateFormFile("image", "shoe.PNG")
		require.NoError(t, err)
		fw.Write([]byte{0x89, 'P', 'N', 'G'})
		require.NoError(t, mw.Close())

		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			var payload struct {
				Description string       `json:"description"`
				Image       uploadedFile `json:"image"`
			}
			if err := json.Unmarshal(req.Payload, &payload); err != nil {
				return false
			}
			return req.Key == "product_image" &&
				payload.Description == "crveni patike" &&
				payload.Image.FileName == "shoe.PNG" &&
				payload.Image.MimeType == "image/png" &&
				payload.Image.Content == base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'})
		})).Return(gateway.Envelope{Success: true, Data: "/download-image/x.png"})

		w := api.do(t, http.MethodPost, "/v1/forward/product_image", &buf, mw.FormDataContentType())

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error - file type not allowed", func(t *testing.T) {
		api := newTestAPI(t)
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("image", "anim.gif")
		require.NoError(t, err)
		fw.Write([]byte("GIF89a"))
		require.NoError(t, mw.Close())

		w := api.do(t, http.MethodPost, "/v1/forward/product_image", &buf, mw.FormDataContentType())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Dozvoljena su samo PNG, JPG i JPEG fajlovi", decodeBody(t, w)["error"])
		api.gateway.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("error - invalid timeout", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodPost, "/v1/forward/translator?timeout=abc", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("timeout override is bounded by the maximum call timeout", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			return req.Timeout == gateway.MaxCallTimeout
		})).Return(gateway.Envelope{Success: true}).Once()

		limit := int(gateway.MaxCallTimeout.Seconds())
		w := api.do(t, http.MethodPost, fmt.Sprintf("/v1/forward/translator?timeout=%d", limit), strings.NewReader(`{}`), "application/json")
		assert.Equal(t, http.StatusOK, w.Code)

		w = api.do(t, http.MethodPost, fmt.Sprintf("/v1/forward/translator?timeout=%d", limit+1), strings.NewReader(`{}`), "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		api.gateway.AssertNumberOfCalls(t, "Handle", 1)
	})

	t.Run("error - unknown webhook is 404", func(t *testing.T) {
		api := newTestAPI(t)
		cfgErr := &gateway.ConfigurationError{Key: "nope", Err: &endpoints.NotFoundError{Key: "nope"}}
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: false, Error: cfgErr.Error(), Err: cfgErr})

		w := api.do(t, http.MethodPost, "/v1/forward/nope", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Nepoznat webhook: nope", body["error"])
	})

	t.Run("error - invalid payload is 400", func(t *testing.T) {
		api := newTestAPI(t)
		err := errors.Join(gateway.ErrInvalidPayload, errors.New("missing text"))
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: false, Err: err})

		w := api.do(t, http.MethodPost, "/v1/forward/translator", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error - upstream failure is 500 with upstream details", func(t *testing.T) {
		api := newTestAPI(t)
		upstreamErr := &gateway.UpstreamError{Key: "translator", StatusCode: 502}
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: false, Data: "bad gateway", UpstreamStatus: 502, Err: upstreamErr})

		w := api.do(t, http.MethodPost, "/v1/forward/translator", strings.NewReader(`{}`), "application/json")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(502), body["upstreamStatus"])
		assert.Equal(t, "bad gateway", body["data"])
		assert.Equal(t, "N8n servis je vratio grešku", body["error"])
	})
}

func TestHealthHandler(t *testing.T) {
	active := gateway.HealthStatus{
		State:         gateway.Active,
		StatusCode:    200,
		Message:       "Webhook je aktivan i spreman za korišćenje",
		ProductionURL: "https://n8n.example.com/webhook/p",
	}

	t.Run("success - default endpoint", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, gateway.Request{Action: gateway.Probe}).
			Return(gateway.Envelope{Success: true, Data: active})

		w := api.do(t, http.MethodGet, "/v1/health", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "active", body["data"].(map[string]any)["status"])
	})

	t.Run("not active is 503", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, gateway.Request{Action: gateway.Probe, Key: "translator"}).
			Return(gateway.Envelope{Success: false, Error: "down", Data: gateway.HealthStatus{State: gateway.Inactive}})

		w := api.do(t, http.MethodGet, "/v1/health?endpoint=translator", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("legacy path returns the bare status", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: false, Data: gateway.HealthStatus{State: gateway.Unreachable, Message: "Greška"}})

		w := api.do(t, http.MethodGet, "/webhook-status", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "Greška", body["message"])
	})

	t.Run("success - POST is accepted on both paths", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, gateway.Request{Action: gateway.Probe}).
			Return(gateway.Envelope{Success: true, Data: active})

		w := api.do(t, http.MethodPost, "/v1/health", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decodeBody(t, w)["success"])

		w = api.do(t, http.MethodPost, "/webhook-status", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "active", decodeBody(t, w)["status"])
	})

	t.Run("error - unknown key and URLs are rejected without probing", func(t *testing.T) {
		api := newTestAPI(t)

		for _, target := range []string{"nope", "http://169.254.169.254/latest"} {
			w := api.do(t, http.MethodGet, "/v1/health?endpoint="+url.QueryEscape(target), nil, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
		api.gateway.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestImageHandlers(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n'}
	encoded := base64.StdEncoding.EncodeToString(png)

	t.Run("success - JSON receive", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, gateway.Request{
			Action: gateway.Receive, ImageBase64: "data:image/png;base64," + encoded, ImageFileName: "a.png",
		}).Return(gateway.Envelope{Success: true, Data: image.StoredImage{
			FileName: "01J_a.png", RetrievalPath: "/download-image/01J_a.png",
		}})

		body := `{"image":"data:image/png;base64,` + encoded + `","fileName":"a.png","originalData":{"id":7}}`
		w := api.do(t, http.MethodPost, "/api/receive-image", strings.NewReader(body), "application/json")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"success": true,
			"fileName": "01J_a.png",
			"downloadUrl": "http://example.com/download-image/01J_a.png",
			"viewUrl": "/view-image/01J_a.png",
			"originalData": {"id": 7},
			"message": "Slika je uspešno generisana i sačuvana!"
		}`, w.Body.String())
	})

	t.Run("success - n8n form with base64_image", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, matchRequest(func(req gateway.Request) bool {
			return req.Action == gateway.Receive && req.ImageBase64 == encoded && req.ImageFileName == "p.png"
		})).Return(gateway.Envelope{Success: true, Data: image.StoredImage{FileName: "x_p.png", RetrievalPath: "/download-image/x_p.png"}})

		form := url.Values{"base64_image": {encoded}, "fileName": {"p.png"}}
		w := api.do(t, http.MethodPost, "/api/receive-generated-image", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "x_p.png", decodeBody(t, w)["fileName"])
	})

	t.Run("success - JSON body without a content type", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, gateway.Request{
			Action: gateway.Receive, ImageBase64: encoded, ImageFileName: "a.png",
		}).Return(gateway.Envelope{Success: true, Data: image.StoredImage{FileName: "x_a.png", RetrievalPath: "/download-image/x_a.png"}})

		body := `{"base64_image":"` + encoded + `","fileName":"a.png"}`
		for _, contentType := range []string{"", "text/plain"} {
			w := api.do(t, http.MethodPost, "/api/receive-generated-image", strings.NewReader(body), contentType)

			assert.Equal(t, http.StatusOK, w.Code, contentType)
			assert.Equal(t, "x_a.png", decodeBody(t, w)["fileName"])
		}
	})

	t.Run("error - missing image", func(t *testing.T) {
		api := newTestAPI(t)

		form := url.Values{"fileName": {"p.png"}}
		w := api.do(t, http.MethodPost, "/api/generate-image-direct", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "BASE64 slika je obavezna", decodeBody(t, w)["error"])
	})

	t.Run("error - decode failure is 400", func(t *testing.T) {
		api := newTestAPI(t)
		api.gateway.On("Handle", mock.Anything, mock.Anything).
			Return(gateway.Envelope{Success: false, Err: &image.DecodeError{Reason: "invalid base64"}})

		w := api.do(t, http.MethodPost, "/v1/images", strings.NewReader(`{"image":"%%%"}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Neispravni BASE64 podaci", decodeBody(t, w)["error"])
	})

	t.Run("serve - download and view", func(t *testing.T) {
		api := newTestAPI(t)
		stored, err := api.images.Receive(context.Background(), encoded, "shoe.png")
		require.NoError(t, err)

		w := api.do(t, http.MethodGet, "/download-image/"+stored.FileName, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, png, w.Body.Bytes())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))

		w = api.do(t, http.MethodGet, "/view-image/"+stored.FileName, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline"))

		w = api.do(t, http.MethodGet, "/v1/images/"+stored.FileName+"?download=1", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))
	})

	t.Run("serve - missing image is 404", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodGet, "/view-image/missing.png", nil, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Slika nije pronađena", decodeBody(t, w)["error"])
	})
}

func TestPreferenceHandlers(t *testing.T) {
	t.Run("save keyed by client IP", func(t *testing.T) {
		api := newTestAPI(t)
		saved := preference.CurrencyPreference{ClientID: "10.1.1.1", BaseCurrency: "EUR", SelectedCryptos: []string{"BTC"}}
		api.prefs.On("Save", mock.Anything, "10.1.1.1", "EUR", []string{"BTC"}).Return(saved, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/save-currency", strings.NewReader(`{"baseCurrency":"EUR","selectedCryptos":["BTC"]}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Real-IP", "10.1.1.1")
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Glavna valuta je uspešno sačuvana", body["message"])
		assert.Equal(t, "EUR", body["data"].(map[string]any)["baseCurrency"])
	})

	t.Run("error - base currency required", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodPost, "/v1/preferences/currency", strings.NewReader(`{"selectedCryptos":[]}`), "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Osnovna valuta je obavezna", decodeBody(t, w)["error"])
	})

	t.Run("get", func(t *testing.T) {
		api := newTestAPI(t)
		api.prefs.On("Get", mock.Anything, "192.0.2.1").
			Return(preference.CurrencyPreference{BaseCurrency: "USD", SelectedCryptos: []string{}}, nil)

		w := api.do(t, http.MethodGet, "/v1/preferences/currency", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "USD", decodeBody(t, w)["data"].(map[string]any)["baseCurrency"])
	})
}

func TestInfoHandlers(t *testing.T) {
	t.Run("ping", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodGet, "/ping", nil, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})

	t.Run("endpoints", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodGet, "/v1/endpoints", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		var list []endpointResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, "product_image", list[0].Key)
		assert.Equal(t, "translator", list[1].Key)
		assert.Equal(t, 30, list[1].TimeoutSeconds)
	})

	t.Run("stats", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodGet, "/v1/stats", nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Contains(t, body["endpoints"], "translator")
		assert.Equal(t, float64(0), body["images_stored"])
	})

	t.Run("stats - redis down is 500", func(t *testing.T) {
		api := newTestAPI(t)
		api.redis.Close()

		w := api.do(t, http.MethodGet, "/v1/stats", nil, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("encode failure keeps the status and writes no error text", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		writeJSON(w, r, http.StatusOK, map[string]any{"c": make(chan int)})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}
