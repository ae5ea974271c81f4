// Package media provides media element backends.
package media

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/tracklist/internal/domain/media"
)

// ElementOptions describes one media element, decoded from its markup
// attributes.
type ElementOptions struct {
	Src      string        `mapstructure:"src"`
	Duration time.Duration `mapstructure:"data-duration"`
	Start    time.Duration `mapstructure:"data-start"`
	Autoplay bool          `mapstructure:"autoplay"`
}

// Backend creates media elements.
type Backend interface {
	// Name returns the backend name (used in config).
	Name() string
	// NewElement creates an element for one track.
	NewElement(opts ElementOptions) (media.Element, error)
}

// NewBackend creates the backend named by name. Elements deliver their
// notifications through d.
func NewBackend(name string, settings map[string]any, d media.Dispatcher) (Backend, error) {
	zlog.Debug().Msgf("creating media backend: type=%s settings=%+v", name, settings)

	switch name {
	case "sim", "":
		b, err := NewSimBackend(d, settings)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create media backend (type %s)", name)
		}
		return b, nil
	default:
		return nil, errors.Newf("unsupported media backend: %s", name)
	}
}

// DecodeElementOptions decodes markup attributes into element options.
// Unknown attributes are ignored.
func DecodeElementOptions(attrs map[string]string) (ElementOptions, error) {
	var opts ElementOptions

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return opts, errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(attrs); err != nil {
		return opts, errors.Wrap(err, "failed to decode media attributes")
	}
	if opts.Duration < 0 || opts.Start < 0 {
		return opts, errors.Newf("negative duration or start in media attributes: %v", attrs)
	}

	return opts, nil
}
