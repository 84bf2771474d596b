package facerec

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

func TestDistance(t *testing.T) {
	assert.InDelta(t, 5.0, Distance([]float64{0, 0}, []float64{3, 4}), 1e-9)
	assert.True(t, math.IsInf(Distance([]float64{1}, []float64{1, 2}), 1))
}

func TestGallery_Match(t *testing.T) {
	g := NewGallery([]Entry{
		{StudentID: 1, Name: "Alice Smith", Encoding: []float64{0, 0, 0}},
		{StudentID: 2, Name: "Bob Johnson", Encoding: []float64{1, 1, 1}},
	}, 0)

	m := g.Match([]float64{0.9, 1, 1.1})
	assert.True(t, m.Known)
	assert.Equal(t, int64(2), m.Entry.StudentID)

	m = g.Match([]float64{0.2, 0.1, 0})
	assert.True(t, m.Known)
	assert.Equal(t, int64(1), m.Entry.StudentID)

	// Closest is Bob but outside tolerance
	m = g.Match([]float64{2, 2, 2})
	assert.False(t, m.Known)
	assert.Equal(t, int64(2), m.Entry.StudentID)
}

func TestGallery_MatchEmpty(t *testing.T) {
	m := NewGallery(nil, 0.5).Match([]float64{1})
	assert.False(t, m.Known)
}

func TestHTTPEncoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		if string(body) == "blank" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "no image"})
			return
		}
		_ = json.NewEncoder(w).Encode(encodeResponse{Faces: []Face{
			{Box: Box{Top: 1, Right: 9, Bottom: 9, Left: 1}, Encoding: []float64{0.1, 0.2}},
		}})
	}))
	defer srv.Close()

	enc := NewHTTPEncoder(srv.URL+"/", time.Second)

	faces, err := enc.Encode(context.Background(), []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.Equal(t, []float64{0.1, 0.2}, faces[0].Encoding)
	assert.Equal(t, 9, faces[0].Box.Right)

	_, err = enc.Encode(context.Background(), []byte("blank"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEncoderUnavailable)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Contains(t, err.Error(), "no image")
}

func TestHTTPEncoder_ServerErrorWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream model crashed", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPEncoder(srv.URL, time.Second).Encode(context.Background(), []byte("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
	assert.Contains(t, err.Error(), "upstream model crashed")
}

func TestHTTPEncoder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPEncoder(url, 200*time.Millisecond).Encode(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrEncoderUnavailable)

	_, err = UnavailableEncoder{}.Encode(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEncoderUnavailable)
}
