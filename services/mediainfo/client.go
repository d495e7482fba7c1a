package mediainfo

import (
	"context"
	"net/http"
	"strings"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/ansel1/merry/v2"
	"github.com/go-resty/resty/v2"
)

var errNon200Status = merry.Sentinel("non-200 status")

const cacheTTL = time.Minute * 5

type Client struct {
	baseURL string

	restyClient *resty.Client
	infoCache   *cache.Cache[string, MediaInfo]
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Accept", "application/json")
	client.SetDisableWarn(true)
	client.SetRetryCount(3)

	return &Client{
		baseURL:     baseURL,
		restyClient: client,
		infoCache:   cache.New[string, MediaInfo](),
	}
}

func (c *Client) Lookup(ctx context.Context, mediaID string) (MediaInfo, error) {
	if info, ok := c.infoCache.Get(mediaID); ok {
		return info, nil
	}

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetResult(&MediaInfo{}).
		Get("/api/v1/media/" + mediaID)
	if err != nil {
		return MediaInfo{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return MediaInfo{}, merry.Wrap(ErrMediaNotFound, merry.WithHTTPCode(resp.StatusCode()))
	}
	if resp.StatusCode() != http.StatusOK {
		return MediaInfo{}, merry.Wrap(errNon200Status, merry.WithHTTPCode(resp.StatusCode()))
	}

	info := *resp.Result().(*MediaInfo)
	c.infoCache.Set(mediaID, info, cache.WithExpiration(cacheTTL))
	return info, nil
}
