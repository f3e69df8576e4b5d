package dashboard

import (
	"context"
	"log/slog"

	"lifewood/internal/middleware"
)

// Preview is the open resume preview.
type Preview struct {
	ApplicantID uint
	URL         string
	DownloadURL string
}

// OpenResume fetches a resume and publishes it under a fresh blob URL. The
// previous preview is released first.
func (d *Dashboard) OpenResume(ctx context.Context, id uint) (Preview, error) {
	data, contentType, err := d.client.FetchResumeBlob(ctx, id)
	if err != nil {
		d.CloseResume()
		middleware.Logger.WarnContext(ctx, "resume preview fetch failed",
			slog.Uint64("applicant_id", uint64(id)),
			slog.String("error", err.Error()))
		return Preview{}, ErrPreviewUnavailable
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	url, err := d.preview.Replace(data, contentType)
	if err != nil {
		d.previewID = 0
		return Preview{}, ErrPreviewUnavailable
	}
	d.previewID = id
	return Preview{ApplicantID: id, URL: url, DownloadURL: d.client.ResumeDownloadURL(id)}, nil
}

// CurrentPreview returns the open preview, if any.
func (d *Dashboard) CurrentPreview() (Preview, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	url := d.preview.URL()
	if url == "" {
		return Preview{}, false
	}
	return Preview{ApplicantID: d.previewID, URL: url, DownloadURL: d.client.ResumeDownloadURL(d.previewID)}, true
}

// CloseResume releases the preview URL.
func (d *Dashboard) CloseResume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.preview.Release()
	d.previewID = 0
}
