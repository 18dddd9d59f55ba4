package cli

import (
	"io"
	"net/url"
	"path"

	"github.com/schollz/progressbar/v3"

	"github.com/bastiangx/wordhunt/pkg/crawler"
)

// crawlProgress draws one bar per crawl on w. A new crawl starts when done resets to 1.
type crawlProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// newCrawlProgress returns a crawler.Progress drawing to w, or nil when disabled.
func newCrawlProgress(w io.Writer, enabled bool) crawler.Progress {
	if !enabled {
		return nil
	}
	p := &crawlProgress{w: w}
	return p.update
}

func (p *crawlProgress) update(done, total int, source string) {
	if p.bar == nil || done == 1 {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription("crawling"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(24),
			progressbar.OptionClearOnFinish(),
		)
	}
	p.bar.Describe(sourceLabelFor(source))
	_ = p.bar.Set(done)
	if done >= total {
		_ = p.bar.Finish()
	}
}

// sourceLabelFor shortens a source URL to host/file.
func sourceLabelFor(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return path.Base(source)
	}
	return u.Host + "/" + path.Base(u.Path)
}
