package facerec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yigit/registrar/internal/pkg/apperrors"
)

// HTTPEncoder calls an external face encoding service.
//
// The service accepts POST {baseURL}/encode with the raw image as body and
// answers {"faces": [{"box": {...}, "encoding": [...]}]}.
type HTTPEncoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEncoder returns an encoder for baseURL with the given request timeout
func NewHTTPEncoder(baseURL string, timeout time.Duration) *HTTPEncoder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPEncoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type encodeResponse struct {
	Faces []Face `json:"faces"`
	Error string `json:"error,omitempty"`
}

// Encode implements Encoder
func (e *HTTPEncoder) Encode(ctx context.Context, image []byte) ([]Face, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/encode", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to build encode request: %w", err)
	}
	req.Header.Set("Content-Type", http.DetectContentType(image))
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read encode response: %w", err)
	}

	var out encodeResponse
	decodeErr := json.Unmarshal(body, &out)
	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrEncoderUnavailable, resp.StatusCode, detail(out, body, decodeErr))
	case resp.StatusCode >= 400:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("face encoder rejected image: %s", detail(out, body, decodeErr)))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("face encoder returned status %d", resp.StatusCode)
	case decodeErr != nil:
		return nil, fmt.Errorf("failed to decode encode response: %w", decodeErr)
	}

	return out.Faces, nil
}

// detail is the service's error text, or the start of a non-JSON body
func detail(out encodeResponse, body []byte, decodeErr error) string {
	if decodeErr == nil && out.Error != "" {
		return out.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	if text == "" {
		return "no details"
	}
	return text
}

// UnavailableEncoder is used when no service URL is configured
type UnavailableEncoder struct{}

// Encode always fails with ErrEncoderUnavailable
func (UnavailableEncoder) Encode(context.Context, []byte) ([]Face, error) {
	return nil, ErrEncoderUnavailable
}
