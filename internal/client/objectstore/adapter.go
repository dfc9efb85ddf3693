package objectstore

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/GregMSThompson/banking-backend/internal/dto"
	"github.com/GregMSThompson/banking-backend/internal/errs"
)

type Adapter struct {
	client *storage.Client
	bucket string
}

func NewAdapter(client *storage.Client, bucket string) *Adapter {
	return &Adapter{client: client, bucket: bucket}
}

// UploadProfileImage stores the image under profile-images/{uid}/ and
// returns its public URL.
func (a *Adapter) UploadProfileImage(ctx context.Context, uid string, file dto.Upload) (string, error) {
	name := path.Join("profile-images", uid, uuid.NewString()+path.Ext(file.Name))

	w := a.client.Bucket(a.bucket).Object(name).NewWriter(ctx)
	w.ContentType = file.ContentType
	if _, err := io.Copy(w, file.Body); err != nil {
		w.Close()
		return "", errs.NewExternalServiceError("storage", "failed to upload profile image", true, err)
	}
	if err := w.Close(); err != nil {
		return "", errs.NewExternalServiceError("storage", "failed to finalize profile image", true, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", a.bucket, name), nil
}

// DeleteObject removes an uploaded object by its public URL.
func (a *Adapter) DeleteObject(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", a.bucket)
	if len(url) <= len(prefix) || url[:len(prefix)] != prefix {
		return nil
	}
	err := a.client.Bucket(a.bucket).Object(url[len(prefix):]).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return errs.NewExternalServiceError("storage", "failed to delete object", true, err)
	}
	return nil
}
