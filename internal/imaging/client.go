// Package imaging wraps the external vorpng image host. The upstream
// contract is underspecified: the accepted multipart field name varies, the
// upload response comes in several shapes, and the delete path is not
// guaranteed. All of that probing stays inside this package; callers see
// Upload/Download/Delete over a normalized ImageRef.
package imaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrUnauthorized means the service rejected our token. Post deletion must
// abort on it rather than orphan billed storage.
var ErrUnauthorized = errors.New("image service rejected credentials")

// DefaultUploadFields is the candidate field-name order when none is
// configured.
var DefaultUploadFields = []string{"file", "files", "image", "images", "file[]"}

// ImageRef is the normalized reference to a hosted image
type ImageRef struct {
	UUID string `json:"uuid"`
	URL  string `json:"url"`
}

// Client talks to the vorpng image service
type Client struct {
	baseURL      string
	token        string
	uploadFields []string
	httpClient   *http.Client
	retryBackoff time.Duration
}

// NewClient creates a new Client. uploadFields may be nil to use the
// defaults.
func NewClient(baseURL, token string, uploadFields []string) *Client {
	if len(uploadFields) == 0 {
		uploadFields = DefaultUploadFields
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		uploadFields: uploadFields,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		retryBackoff: 200 * time.Millisecond,
	}
}

// Upload sends one file, trying each candidate field name in order. It
// advances to the next candidate only when the service answers 400 with an
// "Unexpected field" body; any other failure, or a success, ends the loop.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (ImageRef, error) {
	var lastErr error
	for _, field := range c.uploadFields {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			return ImageRef{}, err
		}
		if _, err := part.Write(data); err != nil {
			return ImageRef{}, err
		}
		if err := writer.Close(); err != nil {
			return ImageRef{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/upload", body)
		if err != nil {
			return ImageRef{}, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return ImageRef{}, fmt.Errorf("upload %s: %w", filename, err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			refs := extractRefs(respBody, c.baseURL)
			if len(refs) == 0 {
				return ImageRef{}, fmt.Errorf("upload %s: unrecognized response shape", filename)
			}
			return refs[0], nil
		}

		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(string(respBody)), "unexpected field") {
			lastErr = fmt.Errorf("upload %s: field %q rejected", filename, field)
			continue
		}

		return ImageRef{}, fmt.Errorf("upload %s: status %d: %s", filename, resp.StatusCode, string(respBody))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("upload %s: no candidate field accepted", filename)
	}
	return ImageRef{}, lastErr
}

// Download proxies a GET for the image, returning the body stream and its
// content type. The caller must close the reader.
func (c *Client) Download(ctx context.Context, imageID string) (io.ReadCloser, string, error) {
	downloadURL := c.baseURL + "/images/" + url.PathEscape(imageID) + "/download"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("download %s: status %d", imageID, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return resp.Body, contentType, nil
}

// Delete removes a hosted image. The exact delete path is not guaranteed, so
// three URL variants are tried; each gets 2 attempts with a short backoff on
// 5xx or network errors. 404 counts as already gone. 401/403 returns
// ErrUnauthorized immediately.
func (c *Client) Delete(ctx context.Context, imageID string) error {
	baseID := stripExtension(imageID)
	escaped := url.PathEscape(baseID)
	candidates := []string{
		c.baseURL + "/images/" + escaped,
		c.baseURL + "/images/" + escaped + "/download",
		c.baseURL + "/images/" + escaped + "/",
	}

	var lastErr error
	for _, candidate := range candidates {
		for attempt := 0; attempt < 2; attempt++ {
			req, err := http.NewRequestWithContext(ctx, http.MethodDelete, candidate, nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+c.token)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				lastErr = err
				if attempt == 0 {
					time.Sleep(c.retryBackoff)
					continue
				}
				break
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return nil
			case resp.StatusCode == http.StatusNotFound:
				// already gone
				return nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return ErrUnauthorized
			case resp.StatusCode >= 500 && attempt == 0:
				lastErr = fmt.Errorf("delete %s: status %d", imageID, resp.StatusCode)
				time.Sleep(c.retryBackoff)
				continue
			default:
				lastErr = fmt.Errorf("delete %s: status %d: %s", imageID, resp.StatusCode, string(body))
			}
			break
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("delete %s: all candidates failed", imageID)
	}
	return lastErr
}

// extractRefs normalizes the service's assorted response shapes into
// ImageRefs: image.{uuid|id}, data[], images[] (objects or URL strings), or
// a bare url.
func extractRefs(raw []byte, baseURL string) []ImageRef {
	var payload struct {
		Image *refShape         `json:"image"`
		Data  []refShape        `json:"data"`
		Imgs  []json.RawMessage `json:"images"`
		URL   string            `json:"url"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	if payload.Image != nil {
		if ref, ok := payload.Image.toRef(baseURL); ok {
			return []ImageRef{ref}
		}
	}

	var refs []ImageRef
	for i := range payload.Data {
		if ref, ok := payload.Data[i].toRef(baseURL); ok {
			refs = append(refs, ref)
		}
	}
	if len(refs) > 0 {
		return refs
	}

	for _, item := range payload.Imgs {
		var asURL string
		if err := json.Unmarshal(item, &asURL); err == nil {
			refs = append(refs, refFromURL(asURL))
			continue
		}
		var asObj refShape
		if err := json.Unmarshal(item, &asObj); err == nil {
			if ref, ok := asObj.toRef(baseURL); ok {
				refs = append(refs, ref)
			}
		}
	}
	if len(refs) > 0 {
		return refs
	}

	if payload.URL != "" {
		return []ImageRef{refFromURL(payload.URL)}
	}
	return nil
}

type refShape struct {
	UUID        string `json:"uuid"`
	ID          string `json:"id"`
	URL         string `json:"url"`
	DownloadURL string `json:"downloadUrl"`
}

func (s *refShape) toRef(baseURL string) (ImageRef, bool) {
	id := s.UUID
	if id == "" {
		id = s.ID
	}
	if id == "" {
		if s.URL != "" {
			return refFromURL(s.URL), true
		}
		return ImageRef{}, false
	}
	refURL := s.DownloadURL
	if refURL == "" {
		refURL = s.URL
	}
	if refURL == "" {
		refURL = baseURL + "/images/" + id
	}
	return ImageRef{UUID: id, URL: refURL}, true
}

func refFromURL(rawURL string) ImageRef {
	return ImageRef{UUID: IDFromURL(rawURL), URL: rawURL}
}

// IDFromURL derives an image id from a URL: last path segment, extension
// stripped, skipping a trailing /download. Also used when a stored image
// carries only a URL.
func IDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	p := parsed.Path
	if path.Base(p) == "download" {
		p = path.Dir(p)
	}
	id := path.Base(p)
	if id == "." || id == "/" || id == "" {
		return rawURL
	}
	return stripExtension(id)
}

func stripExtension(id string) string {
	if dot := strings.LastIndex(id, "."); dot > 0 {
		return id[:dot]
	}
	return id
}
