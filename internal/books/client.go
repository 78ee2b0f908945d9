// Package books — поиск метаданных книг; внешний API потребляется как
// непрозрачный контракт «строка запроса → список книг».
package books

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hearthside/homeschool-hub/internal/apperr"
	"github.com/hearthside/homeschool-hub/internal/models"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1"

type Client struct {
	BaseURL string
	APIKey  string
	HTTPC   *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		HTTPC:   &http.Client{Timeout: 10 * time.Second},
	}
}

type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			PageCount           int      `json:"pageCount"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *Client) Search(ctx context.Context, query string) ([]models.Book, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.InvalidArgument, "search query is required")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", "20")
	if c.APIKey != "" {
		q.Set("key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/volumes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "book search unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.Unavailable, fmt.Sprintf("book search status %d", resp.StatusCode))
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var vr volumesResponse
	if err := json.Unmarshal(raw, &vr); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "bad book search response", err)
	}

	out := make([]models.Book, 0, len(vr.Items))
	for _, it := range vr.Items {
		b := models.Book{
			ID:         it.ID,
			Title:      it.VolumeInfo.Title,
			Author:     strings.Join(it.VolumeInfo.Authors, ", "),
			CoverImage: it.VolumeInfo.ImageLinks.Thumbnail,
			PageCount:  it.VolumeInfo.PageCount,
		}
		for _, ident := range it.VolumeInfo.IndustryIdentifiers {
			if ident.Type == "ISBN_13" || (b.ISBN == "" && ident.Type == "ISBN_10") {
				b.ISBN = ident.Identifier
			}
		}
		out = append(out, b)
	}
	return out, nil
}
