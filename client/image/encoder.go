package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DataURLEncoder encodes images as data urls.
// References can be data urls, http(s) urls, file urls, or file paths.
type DataURLEncoder struct {
	// HTTPClient fetches images from http urls.
	HTTPClient *http.Client
	// MaxSize is the largest number of bytes an image can have.
	MaxSize int64
}

// Encode reads the referenced image and creates a data url of it.
// Data urls are not changed.
func (e DataURLEncoder) Encode(ctx context.Context, ref string) (string, error) {
	var data []byte
	var contentType string
	var err error
	switch {
	case strings.HasPrefix(ref, "data:"):
		return ref, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, contentType, err = e.fetch(ctx, ref)
	default:
		path := strings.TrimPrefix(ref, "file://")
		data, contentType, err = e.readFile(path)
	}
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(contentType) == 0 {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("not an image: %v", contentType)
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (e DataURLEncoder) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating image request: %w", err)
	}
	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetching image: unwanted status: %v", resp.Status)
	}
	data, err := e.read(resp.Body)
	if err != nil {
		return nil, "", err
	}
	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return data, contentType, nil
}

func (e DataURLEncoder) readFile(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	data, err := e.read(f)
	if err != nil {
		return nil, "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return data, contentType, nil
}

func (e DataURLEncoder) read(r io.Reader) ([]byte, error) {
	if e.MaxSize > 0 {
		r = io.LimitReader(r, e.MaxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if e.MaxSize > 0 && int64(len(data)) > e.MaxSize {
		return nil, fmt.Errorf("image larger than %v bytes", e.MaxSize)
	}
	return data, nil
}
