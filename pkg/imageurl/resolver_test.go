package imageurl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ticket-system/pkg/config"
)

const placeholder = "/static/vehicle-placeholder.png"

func newTestResolver(baseURL string, timeout time.Duration) ResolverInterface {
	return NewResolver(config.ImagesConfig{
		BaseURL:     baseURL,
		Placeholder: placeholder,
		Timeout:     timeout,
	}, nil, zap.NewNop())
}

func TestResolver_Resolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uploads/car.jpg":
			w.WriteHeader(http.StatusOK)
		case "/uploads/slow.jpg":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := newTestResolver(srv.URL+"/uploads", 50*time.Millisecond)

	testCases := []struct {
		name   string
		stored string
		want   string
	}{
		{name: "пустой путь", stored: "", want: placeholder},
		{name: "существующий файл", stored: "car.jpg", want: srv.URL + "/uploads/car.jpg"},
		{name: "ведущий слеш", stored: "/car.jpg", want: srv.URL + "/uploads/car.jpg"},
		{name: "нет файла", stored: "missing.jpg", want: placeholder},
		{name: "таймаут", stored: "slow.jpg", want: placeholder},
		{name: "абсолютный URL", stored: srv.URL + "/uploads/car.jpg", want: srv.URL + "/uploads/car.jpg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(context.Background(), tc.stored))
		})
	}
}

func TestResolver_UnreachableHost(t *testing.T) {
	r := newTestResolver("http://127.0.0.1:1", 100*time.Millisecond)
	assert.Equal(t, placeholder, r.Resolve(context.Background(), "car.jpg"))
}

func TestResolver_OnlyRequestsUnderBaseURL(t *testing.T) {
	var outside atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/car.jpg" {
			outside.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var foreignHits atomic.Int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer foreign.Close()

	r := newTestResolver(srv.URL+"/uploads", time.Second)

	for _, stored := range []string{
		foreign.URL + "/uploads/car.jpg",
		"http://169.254.169.254/latest/meta-data/",
		srv.URL + "/admin/secret.txt",
		srv.URL + "/uploads/../admin/secret.txt",
		"https://" + srv.Listener.Addr().String() + "/uploads/car.jpg",
		"../admin/secret.txt",
		"car/../../admin/secret.txt",
		"%2e%2e/admin/secret.txt",
		"//" + foreign.Listener.Addr().String() + "/car.jpg",
		"ftp://" + srv.Listener.Addr().String() + "/uploads/car.jpg",
	} {
		assert.Equal(t, placeholder, r.Resolve(context.Background(), stored), "stored=%q", stored)
	}

	assert.Zero(t, foreignHits.Load(), "запрос ушел на чужой хост")
	assert.Zero(t, outside.Load(), "запрос ушел за пределы базового каталога")
	require.Equal(t, srv.URL+"/uploads/car.jpg", r.Resolve(context.Background(), srv.URL+"/uploads/car.jpg"))
}

func TestResolver_InvalidBaseURL(t *testing.T) {
	r := newTestResolver("uploads", time.Second)
	assert.Equal(t, placeholder, r.Resolve(context.Background(), "car.jpg"))
}
