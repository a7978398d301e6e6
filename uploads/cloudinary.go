package uploads

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads post images to a Cloudinary folder and returns
// the delivery URL.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(rawURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (u *Cloudinary) Upload(ctx context.Context, file io.Reader, name string) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "posts",
		PublicID:       name,
		Transformation: "c_limit,w_1200,q_auto",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}
