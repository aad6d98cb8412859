package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const pageSize = 25

// StatusError is a web service response other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

type browseEntity struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReleasesInCollection returns the IDs of the releases in a collection.
func (c *MusicbrainzClient) ReleasesInCollection(ctx context.Context, collectionID string) ([]string, error) {
	return c.itemsInCollection(ctx, collectionID, "releases")
}

// WorksInCollection returns the IDs of the works in a collection.
func (c *MusicbrainzClient) WorksInCollection(ctx context.Context, collectionID string) ([]string, error) {
	return c.itemsInCollection(ctx, collectionID, "works")
}

// itemsInCollection pages through a collection until the declared count is
// reached. A 503 means rate limited: the same page is requested again.
func (c *MusicbrainzClient) itemsInCollection(ctx context.Context, collectionID, entity string) ([]string, error) {
	countKey := entity[:len(entity)-1] + "-count"

	var items []string
	count := pageSize
	for offset := 0; offset < count; {
		c.log.Debugw("fetching collection page", "collection", collectionID, "entity", entity, "offset", offset)

		q := url.Values{}
		q.Set("fmt", "json")
		q.Set("limit", fmt.Sprint(pageSize))
		q.Set("offset", fmt.Sprint(offset))
		u := fmt.Sprintf("%s/ws/2/collection/%s/%s?%s", c.BaseURL, url.PathEscape(collectionID), entity, q.Encode())

		var page map[string]json.RawMessage
		err := c.get(ctx, u, &page)
		var se *StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusServiceUnavailable {
			c.log.Infow("rate limited, retrying", "url", u)
			continue
		}
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(page[countKey], &count); err != nil {
			return nil, fmt.Errorf("collection %s: reading %s: %w", collectionID, countKey, err)
		}
		var entities []browseEntity
		if err := json.Unmarshal(page[entity], &entities); err != nil {
			return nil, fmt.Errorf("collection %s: reading %s: %w", collectionID, entity, err)
		}
		for _, e := range entities {
			items = append(items, e.ID)
		}
		offset += pageSize
	}
	return items, nil
}

// CollectionName returns the name of a collection.
func (c *MusicbrainzClient) CollectionName(ctx context.Context, collectionID string) (string, error) {
	u := fmt.Sprintf("%s/ws/2/collection/%s?fmt=json", c.BaseURL, url.PathEscape(collectionID))
	var resp struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// RecordingsFromRelease returns the recording IDs of every track of a release.
func (c *MusicbrainzClient) RecordingsFromRelease(ctx context.Context, releaseID string) ([]string, error) {
	u := fmt.Sprintf("%s/ws/2/release/%s?inc=recordings&fmt=json", c.BaseURL, url.PathEscape(releaseID))
	var resp struct {
		Media []struct {
			Tracks []struct {
				Recording browseEntity `json:"recording"`
			} `json:"tracks"`
		} `json:"media"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}

	var recordings []string
	for _, m := range resp.Media {
		for _, t := range m.Tracks {
			recordings = append(recordings, t.Recording.ID)
		}
	}
	return recordings, nil
}

func (c *MusicbrainzClient) get(ctx context.Context, u string, v any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: u, StatusCode: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
