package qr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	qrcode "github.com/skip2/go-qrcode"
)

const TicketFolder = "tickets"

// Renderer turns an opaque payload into a scannable PNG.
type Renderer interface {
	Render(payload string) ([]byte, error)
}

type PNGRenderer struct {
	Size int
}

func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Size: 400}
}

func (r *PNGRenderer) Render(payload string) ([]byte, error) {
	png, err := qrcode.Encode(payload, qrcode.High, r.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %v", err)
	}
	return png, nil
}

// DataURL inlines a PNG for clients that render the QR directly.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Uploader stores a rendered QR image and returns a fetchable location.
type Uploader interface {
	Upload(ctx context.Context, name string, png []byte) (string, error)
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, name string, png []byte) (string, error) {
	uploadResult, err := u.cld.Upload.Upload(ctx, bytes.NewReader(png), uploader.UploadParams{
		PublicID: name,
		Folder:   TicketFolder,
		Tags:     []string{"seabay-ticket"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload QR image %s: %v", name, err)
	}
	return uploadResult.SecureURL, nil
}
