package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CloudinaryStore uploads through Cloudinary's signed upload API.
type CloudinaryStore struct {
	cloud, apiKey, apiSecret, folder string
	client                           *http.Client
	endpoint                         string
}

func NewCloudinaryStore(cloud, apiKey, apiSecret, folder string, client *http.Client) *CloudinaryStore {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &CloudinaryStore{
		cloud:     cloud,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		folder:    strings.Trim(folder, "/"),
		client:    client,
		endpoint:  "https://api.cloudinary.com/v1_1/" + cloud + "/image",
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Result    string `json:"result"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CloudinaryStore) Put(ctx context.Context, key, _ string, r io.Reader) (string, error) {
	publicID := s.publicID(strings.TrimSuffix(key, pathExt(key)))
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"api_key":   s.apiKey,
		"public_id": publicID,
		"timestamp": ts,
		"signature": s.sign(publicID, ts),
	} {
		if err := w.WriteField(k, v); err != nil {
			return "", err
		}
	}
	part, err := w.CreateFormFile("file", pathBase(key))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	res, err := s.do(ctx, s.endpoint+"/upload", w.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	if res.SecureURL != "" {
		return res.SecureURL, nil
	}
	if res.URL != "" {
		return res.URL, nil
	}
	return "", fmt.Errorf("cloudinary: no url returned")
}

func (s *CloudinaryStore) Delete(ctx context.Context, rawURL string) error {
	publicID, ok := publicIDFromURL(rawURL)
	if !ok {
		return fmt.Errorf("cloudinary: cannot derive public id from %q", rawURL)
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	form := url.Values{
		"public_id": {publicID},
		"api_key":   {s.apiKey},
		"timestamp": {ts},
		"signature": {s.sign(publicID, ts)},
	}
	res, err := s.do(ctx, s.endpoint+"/destroy", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	if res.Result != "ok" && res.Result != "not found" {
		return fmt.Errorf("cloudinary: destroy result %q", res.Result)
	}
	return nil
}

func (s *CloudinaryStore) do(ctx context.Context, endpoint, contentType string, body io.Reader) (cloudinaryResponse, error) {
	var out cloudinaryResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := s.client.Do(req)
	if err != nil {
		return out, fmt.Errorf("cloudinary: %w", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return out, fmt.Errorf("cloudinary: decode (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || out.Error.Message != "" {
		return out, fmt.Errorf("cloudinary: status %d: %s", resp.StatusCode, out.Error.Message)
	}
	return out, nil
}

// sign follows Cloudinary's scheme: sha1 of the sorted parameters followed
// by the API secret.
func (s *CloudinaryStore) sign(publicID, ts string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte("public_id="+publicID+"&timestamp="+ts+s.apiSecret)))
}

func (s *CloudinaryStore) publicID(key string) string {
	if s.folder == "" {
		return key
	}
	return s.folder + "/" + key
}

// publicIDFromURL extracts "<folder>/<key>" from
// https://res.cloudinary.com/<cloud>/image/upload/v<version>/<folder>/<key>.<ext>.
func publicIDFromURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	_, rest, ok := strings.Cut(u.Path, "/upload/")
	if !ok || rest == "" {
		return "", false
	}
	if first, tail, found := strings.Cut(rest, "/"); found && len(first) > 1 && first[0] == 'v' {
		if _, err := strconv.ParseUint(first[1:], 10, 64); err == nil {
			rest = tail
		}
	}
	rest = strings.TrimSuffix(rest, pathExt(rest))
	return rest, rest != ""
}

func pathBase(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func pathExt(p string) string {
	base := pathBase(p)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[i:]
	}
	return ""
}
