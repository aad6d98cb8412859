package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port     int    `default:"8080"`
	LogLevel string `default:"info" split_words:"true"`

	// DocserverRoot is where pipeline artifacts are read from and written to.
	DocserverRoot string `default:"./docserver" split_words:"true"`

	CorrectorCmd string  `default:"alignedpitchfilter" split_words:"true"`
	ModelerCmd   string  `default:"alignednotemodel" split_words:"true"`
	ExtractorCmd string  `default:"predominantmelodymakam" split_words:"true"`
	KernelWidth  float64 `default:"7.5" split_words:"true"`

	MusicbrainzURL string `default:"https://musicbrainz.org" split_words:"true"`
	UserAgent      string `default:"Dunya/0.1" split_words:"true"`

	// Optional. Empty disables the run log.
	DatabaseURL string `split_words:"true"`
	// Optional. Empty disables publishing display summaries.
	FirestoreProject string `split_words:"true"`
}

func ProvideConfig() Config {
	var cfg Config
	err := envconfig.Process("makampitch", &cfg)
	if err != nil {
		log.Fatal(err.Error())
	}
	return cfg
}

var Options = ProvideConfig
