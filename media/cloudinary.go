package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// DefaultCloudinaryURL is the public upload API.
const DefaultCloudinaryURL = "https://api.cloudinary.com"

// Cloudinary uploads through an unsigned upload preset.
type Cloudinary struct {
	CloudName    string
	UploadPreset string
	// BaseURL overrides DefaultCloudinaryURL.
	BaseURL string
}

func NewCloudinary(cloudName, preset, baseURL string) *Cloudinary {
	return &Cloudinary{CloudName: cloudName, UploadPreset: preset, BaseURL: baseURL}
}

func (c *Cloudinary) client() (*cloudinary.Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(c.CloudName, "", "")
	if err != nil {
		return nil, err
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultCloudinaryURL
	}
	cld.Config.API.UploadPrefix = strings.TrimRight(base, "/")
	return cld, nil
}

// Upload stores f in folder and returns the secure URL of the asset.
// Missing credentials fail before any request is made.
func (c *Cloudinary) Upload(ctx context.Context, f File, kind Kind, folder string) (string, error) {
	if c.CloudName == "" || c.UploadPreset == "" {
		return "", ErrMissingConfig
	}
	cld, err := c.client()
	if err != nil {
		return "", fmt.Errorf("media: upload: %w", err)
	}

	res, err := cld.Upload.UnsignedUpload(ctx, bytes.NewReader(f.Data), c.UploadPreset, uploader.UploadParams{
		Folder:       folder,
		ResourceType: string(kind),
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	if msg := res.Error.Message; msg != "" {
		return "", fmt.Errorf("upload failed: %s", msg)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("media: upload: response has no secure_url")
	}
	return res.SecureURL, nil
}
