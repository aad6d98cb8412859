package musicbrainz

import (
	"net/http"
	"strings"
	"time"

	"github.com/mager/makampitch/config"
	"github.com/mager/musicbrainz-go/musicbrainz"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type MusicbrainzClient struct {
	Client *musicbrainz.MusicbrainzClient

	// BaseURL of the web service used for collection and release browsing.
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	// Limiter paces web service requests.
	Limiter *rate.Limiter

	log *zap.SugaredLogger
}

func ProvideMusicbrainz(cfg config.Config, log *zap.SugaredLogger) *MusicbrainzClient {
	name, version := "Dunya", "0.1"
	if parts := strings.SplitN(cfg.UserAgent, "/", 2); len(parts) == 2 {
		name, version = parts[0], parts[1]
	}

	var c MusicbrainzClient
	c.Client = musicbrainz.NewMusicbrainzClient().
		WithUserAgent(name, version, "https://github.com/mager/makampitch")
	c.BaseURL = strings.TrimRight(cfg.MusicbrainzURL, "/")
	c.UserAgent = name + "/" + version + " makampitch"
	c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	c.Limiter = rate.NewLimiter(rate.Every(time.Second), 1)
	c.log = log

	return &c
}

var Options = ProvideMusicbrainz
