package docmost

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"docmost-mcp/internal/apperr"
)

const (
	defaultFileName    = "upload.bin"
	defaultContentType = "application/octet-stream"
)

// FileDownload is a downloaded attachment with its bytes base64 encoded.
type FileDownload struct {
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Base64      string `json:"base64"`
}

// UploadInput describes an attachment to upload. Exactly one source of
// bytes is used: FileURL when set, otherwise FileBase64.
type UploadInput struct {
	PageID     string
	FileName   string
	FileBase64 string
	FileURL    string
}

// DownloadFile fetches an attachment.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*FileDownload, error) {
	if fileID == "" {
		return nil, apperr.Validation("fileId is required to download a file")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/api/files/"+url.PathEscape(fileID)), nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "build download request")
	}
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "docmost download failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "read downloaded file")
	}
	if !isSuccess(resp.StatusCode) {
		return nil, apperr.Backend(resp.StatusCode, "docmost returned %d while downloading: %s", resp.StatusCode, string(data))
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	return &FileDownload{
		FileID:      fileID,
		ContentType: contentType,
		Size:        len(data),
		Base64:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

// UploadFile attaches a file to a page through the multipart upload endpoint.
func (c *Client) UploadFile(ctx context.Context, in UploadInput) (any, error) {
	if in.PageID == "" {
		return nil, apperr.Validation("pageId is required to upload a file")
	}
	if in.FileBase64 == "" && in.FileURL == "" {
		return nil, apperr.Validation("provide fileBase64 or fileUrl to upload a file")
	}

	name := in.FileName
	contentType := defaultContentType
	var data []byte
	if in.FileURL != "" {
		fetched, fetchedType, urlName, err := c.fetchRemote(ctx, in.FileURL)
		if err != nil {
			return nil, err
		}
		data = fetched
		if fetchedType != "" {
			contentType = fetchedType
		}
		if name == "" {
			name = urlName
		}
	} else {
		decoded, err := base64.StdEncoding.DecodeString(in.FileBase64)
		if err != nil {
			return nil, apperr.Validation("fileBase64 is not valid base64: %v", err)
		}
		data = decoded
	}
	if name == "" {
		name = defaultFileName
	}

	body, formType, err := multipartBody(in.PageID, name, contentType, data)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "build upload form")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/files/upload"), body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "build upload request")
	}
	req.Header.Set("Content-Type", formType)
	c.authorize(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackend, err, "docmost upload failed")
	}
	defer resp.Body.Close()
	return decodeResponse(resp)
}

// fetchRemote downloads a source file. No Docmost credential is sent.
func (c *Client) fetchRemote(ctx context.Context, rawURL string) ([]byte, string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", "", apperr.Validation("fileUrl must be an absolute http(s) URL")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", "", apperr.Wrap(apperr.KindBackend, err, "build remote file request")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", "", apperr.Wrap(apperr.KindBackend, err, "could not fetch remote file")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", "", apperr.Wrap(apperr.KindBackend, err, "read remote file")
	}
	if !isSuccess(resp.StatusCode) {
		return nil, "", "", apperr.Backend(resp.StatusCode, "could not fetch remote file: %d %s", resp.StatusCode, string(data))
	}
	return data, resp.Header.Get("Content-Type"), fileNameFromPath(u.Path), nil
}

// fileNameFromPath returns the final path segment, or "" for an empty path.
func fileNameFromPath(p string) string {
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func multipartBody(pageID, name, contentType string, data []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if err := w.WriteField("pageId", pageID); err != nil {
		return nil, "", err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
