package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	w.Header().Set("Content-Type", contentType)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("received: " + string(body)))
}

func gzipBytes(t *testing.T, s string) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return &buf
}

func TestGzipMiddleware(t *testing.T) {
	type want struct {
		contentEncoding string
		contentType     string
		body            string
	}

	tests := []struct {
		name           string
		requestBody    string
		compressBody   bool
		acceptEncoding string
		contentType    string
		want           want
	}{
		{
			name:           "json response is compressed",
			requestBody:    `{"email":"buyer@example.com"}`,
			acceptEncoding: "gzip, deflate",
			contentType:    "application/json",
			want: want{
				contentEncoding: "gzip",
				contentType:     "application/json",
				body:            `received: {"email":"buyer@example.com"}`,
			},
		},
		{
			name:           "html response is compressed",
			requestBody:    "hello",
			acceptEncoding: "gzip",
			contentType:    "text/html",
			want: want{
				contentEncoding: "gzip",
				contentType:     "text/html",
				body:            "received: hello",
			},
		},
		{
			name:        "client does not accept gzip",
			requestBody: "plain request",
			contentType: "application/json",
			want: want{
				contentType: "application/json",
				body:        "received: plain request",
			},
		},
		{
			name:           "binary response is not compressed",
			requestBody:    "png",
			acceptEncoding: "gzip",
			contentType:    "image/png",
			want: want{
				contentType: "image/png",
				body:        "received: png",
			},
		},
		{
			name:           "compressed request body is unpacked",
			requestBody:    `{"to":"a@b.c"}`,
			compressBody:   true,
			acceptEncoding: "gzip",
			contentType:    "application/json",
			want: want{
				contentEncoding: "gzip",
				contentType:     "application/json",
				body:            `received: {"to":"a@b.c"}`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader = strings.NewReader(tt.requestBody)
			if tt.compressBody {
				body = gzipBytes(t, tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/send-email", body)
			req.Header.Set("Content-Type", tt.contentType)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.compressBody {
				req.Header.Set("Content-Encoding", "gzip")
			}

			w := httptest.NewRecorder()
			GzipMiddleware(http.HandlerFunc(echoHandler)).ServeHTTP(w, req)

			res := w.Result()
			defer res.Body.Close()

			require.Equal(t, http.StatusOK, res.StatusCode)
			assert.Equal(t, tt.want.contentType, res.Header.Get("Content-Type"))
			assert.Equal(t, tt.want.contentEncoding, res.Header.Get("Content-Encoding"))

			var rd io.Reader = res.Body
			if res.Header.Get("Content-Encoding") == "gzip" {
				gr, err := gzip.NewReader(res.Body)
				require.NoError(t, err)
				defer gr.Close()
				rd = gr
			}

			got, err := io.ReadAll(rd)
			require.NoError(t, err)
			assert.Equal(t, tt.want.body, string(got))
		})
	}
}

func TestGzipMiddleware_BrokenRequestBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/send-email", strings.NewReader("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")

	w := httptest.NewRecorder()
	GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("next handler should not be called")
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGzipMiddleware_NoContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	w := httptest.NewRecorder()
	GzipMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Zero(t, w.Body.Len())
}
