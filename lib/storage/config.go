package storage

import (
	"net/url"

	"kairosvote.io/kairos/lib/errors"
)

type Config struct {
	Scheme string
	Path   string
}

// NewConfigFromString parses "memory://" or "file:///path/to/db".
func NewConfigFromString(s string) (config Config, err error) {
	var parsed *url.URL
	if parsed, err = url.Parse(s); err != nil {
		return
	}

	switch parsed.Scheme {
	case "memory":
		config = Config{Scheme: "memory"}
	case "file":
		if len(parsed.Path) < 1 {
			err = errors.ErrorInvalidConfig.Clone().SetData("storage", s)
			return
		}
		config = Config{Scheme: "file", Path: parsed.Path}
	default:
		err = errors.ErrorInvalidConfig.Clone().SetData("storage", s)
		return
	}

	return
}
