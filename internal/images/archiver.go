package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"net/url"
	"path"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/go-resty/resty/v2"
	"github.com/nfnt/resize"
	"github.com/sirupsen/logrus"

	"github.com/tinyrobots/robot-archive-bot/internal/models"
	"github.com/tinyrobots/robot-archive-bot/internal/storage"
	"github.com/tinyrobots/robot-archive-bot/internal/store"
)

const thumbQuality = 85

// Archiver downloads robot images and stores them alongside a small
// thumbnail, recording the storage paths back on the robot record.
type Archiver struct {
	client    *resty.Client
	store     store.Store
	storage   storage.Interface
	thumbSize uint
}

// NewArchiver creates a new image archiver
func NewArchiver(st store.Store, backend storage.Interface, thumbSize int) *Archiver {
	if thumbSize <= 0 {
		thumbSize = 128
	}
	return &Archiver{
		client:    resty.New().SetTimeout(30 * time.Second),
		store:     st,
		storage:   backend,
		thumbSize: uint(thumbSize),
	}
}

// ArchiveMissing downloads images for every robot that does not have one
// archived yet. Individual download failures are logged and skipped so
// one broken URL cannot stall the sweep; the failure count is reported
// in the returned error.
func (a *Archiver) ArchiveMissing(ctx context.Context) (int, error) {
	records, err := a.store.RobotsMissingImages(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list robots missing images: %w", err)
	}

	if len(records) == 0 {
		logrus.Debug("No robots missing images")
		return 0, nil
	}

	logrus.Infof("Archiving images for %d robots", len(records))

	archived := 0
	failed := 0
	for i := range records {
		if err := a.archiveOne(ctx, &records[i]); err != nil {
			logrus.Errorf("Failed to archive image for robot %s: %v", records[i].Identity(), err)
			failed++
			continue
		}
		archived++
	}

	if failed > 0 {
		return archived, fmt.Errorf("%d of %d images failed to archive", failed, len(records))
	}
	return archived, nil
}

func (a *Archiver) archiveOne(ctx context.Context, rec *models.RobotRecord) error {
	resp, err := a.client.R().SetContext(ctx).Get(rec.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", rec.ImageURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("download of %s returned status %d", rec.ImageURL, resp.StatusCode())
	}

	data := resp.Body()

	imagePath := imageName(rec)
	if err := a.storage.Store(ctx, imagePath, data); err != nil {
		return err
	}

	thumb, err := a.makeThumbnail(data)
	if err != nil {
		return fmt.Errorf("failed to build thumbnail for %s: %w", rec.Identity(), err)
	}

	thumbPath := "thumbs/" + rec.Identity().String() + ".jpg"
	if err := a.storage.Store(ctx, thumbPath, thumb); err != nil {
		return err
	}

	if err := a.store.SetImagePaths(ctx, rec.ID, imagePath, thumbPath); err != nil {
		return fmt.Errorf("failed to record image paths for %s: %w", rec.Identity(), err)
	}

	logrus.Debugf("Archived image for robot %s", rec.Identity())
	return nil
}

// makeThumbnail decodes the image and scales it down to fit the
// configured bounding box. Animated images keep only their first frame.
func (a *Archiver) makeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	small := resize.Thumbnail(a.thumbSize, a.thumbSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, small, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// imageName derives the storage name for the full-size image, keeping
// the upstream file extension when it has one.
func imageName(rec *models.RobotRecord) string {
	ext := ".jpg"
	if u, err := url.Parse(rec.ImageURL); err == nil {
		if got := path.Ext(u.Path); got != "" {
			ext = got
		}
	}
	return rec.Identity().String() + ext
}
