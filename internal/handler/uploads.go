package handler

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/iliyamo/tripadvisor-api/internal/media"
	"github.com/iliyamo/tripadvisor-api/internal/repository"
)

const mb = 1 << 20

// PicturePolicy bounds one kind of picture upload.  MaxTotal of zero means
// the stored list is unbounded.
type PicturePolicy struct {
	Prefix   string
	MaxBytes int64
	MaxTotal int
}

var (
	hotelPictures      = PicturePolicy{Prefix: "hotels", MaxBytes: 2 * mb, MaxTotal: 5}
	restaurantPictures = PicturePolicy{Prefix: "restaurants", MaxBytes: 5 * mb}
	profilePictures    = PicturePolicy{Prefix: "profileImages", MaxBytes: 2 * mb, MaxTotal: 1}
)

// check validates a batch of files against the policy given how many
// pictures are already stored.
func (p PicturePolicy) check(files []*multipart.FileHeader, stored int) error {
	if len(files) == 0 {
		return repository.Invalid("No pictures provided")
	}
	if p.MaxTotal > 0 && len(files) > p.MaxTotal {
		return repository.Invalid(fmt.Sprintf("Cannot upload more than %d pictures", p.MaxTotal))
	}
	for _, f := range files {
		if f.Size > p.MaxBytes {
			return repository.Invalid(fmt.Sprintf("Cannot upload pictures larger than %dMB", p.MaxBytes/mb))
		}
	}
	if p.MaxTotal > 1 && stored+len(files) > p.MaxTotal {
		return repository.Invalid(fmt.Sprintf("Will exceed maximum limit of %d pictures", p.MaxTotal))
	}
	return nil
}

// storeFiles uploads files under prefix/id.  When one upload fails the ones
// already stored are removed again.
func storeFiles(ctx context.Context, store media.Store, logger *slog.Logger, prefix string, id uint64, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := storeFile(ctx, store, prefix, id, fh)
		if err != nil {
			dropObjects(ctx, store, logger, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func storeFile(ctx context.Context, store media.Store, prefix string, id uint64, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", repository.Invalid("unreadable upload " + fh.Filename)
	}
	defer f.Close()

	// sniff instead of trusting the client header
	head := make([]byte, 512)
	n, _ := f.Read(head)
	ct := http.DetectContentType(head[:n])
	if !strings.HasPrefix(ct, "image/") {
		return "", repository.Invalid("only image uploads are accepted")
	}
	if _, err := f.Seek(0, 0); err != nil {
		return "", err
	}
	url, err := store.Put(ctx, media.ObjectKey(prefix, id, fh.Filename), ct, f)
	if err != nil {
		return "", repository.Unavailable("media storage", err)
	}
	return url, nil
}

// dropObjects removes stored objects best-effort.  The database no longer
// points at them, so a failure only leaves an orphan behind.
func dropObjects(ctx context.Context, store media.Store, logger *slog.Logger, urls []string) {
	for _, u := range urls {
		if err := store.Delete(context.WithoutCancel(ctx), u); err != nil {
			logger.Warn("media delete failed", slog.String("url", u), slog.Any("error", err))
		}
	}
}
