package musicbrainz

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	mb "github.com/mager/musicbrainz-go/musicbrainz"
)

// WorkRelation links a recording or work to a work or artist.
type WorkRelation struct {
	Type   string `json:"type"`
	WorkID string `json:"work_id,omitempty"`
	Artist string `json:"artist,omitempty"`
}

// Tag is a folksonomy tag and the number of users who applied it.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WorkAttribute is a typed attribute of a work, such as its makam, usul or form.
type WorkAttribute struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GenresFromRecording returns the genres of a recording, most voted first.
func (c *MusicbrainzClient) GenresFromRecording(recordingID string) ([]string, error) {
	resp, err := c.Client.GetRecording(mb.GetRecordingRequest{
		ID:       recordingID,
		Includes: []mb.Include{"genres"},
	})
	if err != nil {
		return nil, err
	}
	return genreNames(resp.Recording.Genres), nil
}

// WorksFromRecording returns the works a recording performs.
func (c *MusicbrainzClient) WorksFromRecording(recordingID string) ([]WorkRelation, error) {
	resp, err := c.Client.GetRecording(mb.GetRecordingRequest{
		ID:       recordingID,
		Includes: []mb.Include{"work-rels"},
	})
	if err != nil {
		return nil, err
	}
	return workRelations(resp.Recording.Relations), nil
}

// WorkArtists returns the composer, lyricist and other artist relations of a work.
func (c *MusicbrainzClient) WorkArtists(workID string) ([]WorkRelation, error) {
	resp, err := c.Client.GetWork(mb.GetWorkRequest{
		ID:       workID,
		Includes: []mb.Include{"artist-rels"},
	})
	if err != nil {
		return nil, err
	}
	return artistRelations(resp.Work.Relations), nil
}

// TagsFromRecording returns the tags of a recording.
func (c *MusicbrainzClient) TagsFromRecording(ctx context.Context, recordingID string) ([]Tag, error) {
	u := fmt.Sprintf("%s/ws/2/recording/%s?inc=tags&fmt=json", c.BaseURL, url.PathEscape(recordingID))
	var resp struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

// WorkAttributes returns the attributes of a work.
func (c *MusicbrainzClient) WorkAttributes(ctx context.Context, workID string) ([]WorkAttribute, error) {
	u := fmt.Sprintf("%s/ws/2/work/%s?fmt=json", c.BaseURL, url.PathEscape(workID))
	var resp struct {
		Attributes []WorkAttribute `json:"attributes"`
	}
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Attributes, nil
}

func genreNames(genres *[]mb.Genre) []string {
	if genres == nil {
		return nil
	}
	sorted := append([]mb.Genre(nil), *genres...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	names := make([]string, 0, len(sorted))
	for _, g := range sorted {
		names = append(names, g.Name)
	}
	return names
}

func workRelations(relations *[]mb.Relation) []WorkRelation {
	if relations == nil {
		return nil
	}
	var works []WorkRelation
	for _, relation := range *relations {
		if relation.TargetType != "work" || relation.Work == nil {
			continue
		}
		works = append(works, WorkRelation{Type: relation.Type, WorkID: relation.Work.ID})
	}
	return works
}

func artistRelations(relations *[]mb.Relation) []WorkRelation {
	if relations == nil {
		return nil
	}
	var artists []WorkRelation
	for _, relation := range *relations {
		if relation.TargetType != "artist" || relation.Artist == nil {
			continue
		}
		artists = append(artists, WorkRelation{Type: relation.Type, Artist: relation.Artist.Name})
	}
	return artists
}
