package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/videotube/backend/config"
	"github.com/videotube/backend/pkg/circuit"
	"github.com/videotube/backend/pkg/logger"
	"go.uber.org/zap"
)

// CloudinaryUploader uploads files to a Cloudinary-compatible host using the
// signed upload API. Calls are guarded by a circuit breaker so a degraded
// media host fails fast instead of tying up request handlers.
type CloudinaryUploader struct {
	cfg     config.MediaConfig
	client  *http.Client
	breaker *circuit.Breaker
}

func NewCloudinaryUploader(cfg config.MediaConfig) *CloudinaryUploader {
	return &CloudinaryUploader{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: circuit.NewBreaker("media-upload", circuit.DefaultConfig(), logger.GetLogger()),
	}
}

func (u *CloudinaryUploader) uploadURL() string {
	if u.cfg.UploadURL != "" {
		return u.cfg.UploadURL
	}
	return fmt.Sprintf("https://api.cloudinary.com/v1_1/%s/auto/upload", u.cfg.CloudName)
}

// Upload posts the file as signed multipart form data and returns the stored
// asset. The error from a rejected (breaker open) call is returned as-is so
// callers can map it to an upstream failure.
func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	var result *UploadResult

	err := u.breaker.Execute(func() error {
		res, err := u.doUpload(ctx, filename, file)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (u *CloudinaryUploader) doUpload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	publicID := uuid.NewString()
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"api_key":   u.cfg.APIKey,
		"public_id": publicID,
		"timestamp": timestamp,
		"signature": u.sign(publicID, timestamp),
	}
	if u.cfg.UploadPreset != "" {
		fields["upload_preset"] = u.cfg.UploadPreset
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy upload body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		logger.GetLogger().Error("Media upload request failed",
			zap.String("filename", filename),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("media host request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.GetLogger().Error("Media host rejected upload",
			zap.String("filename", filename),
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", payload),
		)
		return nil, fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}

	logger.GetLogger().Info("Media uploaded",
		zap.String("filename", filename),
		zap.String("public_id", result.PublicID),
		zap.Int64("bytes", result.Bytes),
		zap.Duration("duration", time.Since(start)),
	)

	return &result, nil
}

// sign computes the SHA-1 request signature over the sorted upload
// parameters, per the Cloudinary signed-upload contract.
func (u *CloudinaryUploader) sign(publicID, timestamp string) string {
	params := fmt.Sprintf("public_id=%s&timestamp=%s", publicID, timestamp)
	if u.cfg.UploadPreset != "" {
		params = fmt.Sprintf("public_id=%s&timestamp=%s&upload_preset=%s", publicID, timestamp, u.cfg.UploadPreset)
	}
	sum := sha1.Sum([]byte(params + u.cfg.APISecret))
	return hex.EncodeToString(sum[:])
}
