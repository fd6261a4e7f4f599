// Package tikwm implements the metadata API client for resolving source links
// into downloadable media descriptors.
package tikwm

import (
	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/source"
)

// response is the envelope every API reply arrives in. code == 0 signals success.
type response struct {
	Code int      `json:"code"`
	Msg  string   `json:"msg"`
	Data *payload `json:"data"`
}

// payload carries the subset of the data object this application consumes.
type payload struct {
	Title    string `json:"title"`
	Region   string `json:"region"`
	Duration int    `json:"duration"`
	Cover    string `json:"cover"`
	Play     string `json:"play"`
	HDPlay   string `json:"hdplay"`
	Music    string `json:"music"`
}

// media maps the raw payload onto the domain descriptor.
// Empty URL strings become absent options: the API reports unavailable
// variants as empty fields, not by omitting the keys.
func (p *payload) media() *source.Media {
	return &source.Media{
		Title:           p.Title,
		Region:          p.Region,
		DurationSeconds: p.Duration,
		Cover:           mo.EmptyableToOption(p.Cover),
		Variants: map[source.Variant]mo.Option[string]{
			source.StandardVideo: mo.EmptyableToOption(p.Play),
			source.HDVideo:       mo.EmptyableToOption(p.HDPlay),
			source.CoverImage:    mo.EmptyableToOption(p.Cover),
			source.Music:         mo.EmptyableToOption(p.Music),
		},
	}
}
