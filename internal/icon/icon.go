// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package icon implements the condition icon cache. Icons are fetched and decoded on the first
// miss and served from memory afterwards.
package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/http"
	"net/url"
	"time"

	fhttp "github.com/wneessen/daily-forecast/internal/http"
)

const fetchTimeout = time.Second * 10

// ErrFetch is returned for any failure while fetching or decoding an icon
var ErrFetch = errors.New("failed to fetch icon")

// Fetcher retrieves and decodes the icon behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (image.Image, error)
}

// HTTPFetcher fetches icons via HTTP
type HTTPFetcher struct {
	http *fhttp.Client
}

func NewHTTPFetcher(client *fhttp.Client) *HTTPFetcher {
	return &HTTPFetcher{http: client}
}

// Fetch downloads and decodes the icon at locator.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string) (image.Image, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid locator: %w", ErrFetch, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}

	code, data, err := f.http.GetBytes(ctx, u.String(), fetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("%w: server returned status %d", ErrFetch, code)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %w", ErrFetch, err)
	}
	return img, nil
}
