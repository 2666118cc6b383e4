// Package youtube downloads source videos for submit-by-URL requests.
package youtube

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// Client wraps the YouTube download library.
type Client struct {
	client ytdl.Client
}

// NewClient creates a new YouTube client.
func NewClient() *Client {
	return &Client{
		client: ytdl.Client{},
	}
}

// StreamInfo describes the stream selected for download.
type StreamInfo struct {
	Title     string
	Extension string // ".mp4" or ".webm"
	Size      int64
}

// Filename returns a safe filename for the stream.
func (s *StreamInfo) Filename() string {
	return sanitizeFilename(s.Title) + s.Extension
}

// OpenVideoStream resolves a video URL and opens a stream for its best
// progressive format (video plus audio in one stream), preferring mp4.
// The caller must close the returned reader.
func (c *Client) OpenVideoStream(ctx context.Context, videoURL string) (io.ReadCloser, *StreamInfo, error) {
	video, err := c.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get video: %w", err)
	}

	format, err := selectVideoFormat(video)
	if err != nil {
		return nil, nil, err
	}

	stream, size, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get stream: %w", err)
	}

	return stream, &StreamInfo{
		Title:     video.Title,
		Extension: extensionFor(format.MimeType),
		Size:      size,
	}, nil
}

// selectVideoFormat picks the highest-bitrate format carrying both a video
// and an audio track. Video-only DASH streams are skipped because the
// pipeline expects a single self-contained input file.
func selectVideoFormat(video *ytdl.Video) (*ytdl.Format, error) {
	var candidates []*ytdl.Format
	for i := range video.Formats {
		f := &video.Formats[i]
		if !strings.HasPrefix(f.MimeType, "video/") {
			continue
		}
		if f.AudioChannels == 0 {
			continue
		}
		candidates = append(candidates, f)
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no progressive video format available")
	}

	// mp4 first, then highest bitrate
	sort.Slice(candidates, func(i, j int) bool {
		iMP4 := strings.Contains(candidates[i].MimeType, "mp4")
		jMP4 := strings.Contains(candidates[j].MimeType, "mp4")
		if iMP4 != jMP4 {
			return iMP4
		}
		return candidates[i].Bitrate > candidates[j].Bitrate
	})

	return candidates[0], nil
}

func extensionFor(mimeType string) string {
	if strings.Contains(mimeType, "webm") {
		return ".webm"
	}
	return ".mp4"
}

// sanitizeFilename はファイル名として使えない文字を置換
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
