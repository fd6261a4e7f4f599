// Package source defines the domain model for fetched media metadata.
package source

import (
	"regexp"

	"github.com/samber/mo"
	"github.com/tokgrab-cli/tokgrab/util"
)

// linkPattern matches the recognized source-domain hosts, scheme- and www-optional.
var linkPattern = regexp.MustCompile(`^(https?://)?(www\.)?(tiktok\.com|vm\.tiktok\.com|vt\.tiktok\.com)/`)

// IsSupportedURL reports whether the given URL points at a recognized source domain.
func IsSupportedURL(url string) bool {
	return linkPattern.MatchString(url)
}

// Media describes a single source asset as resolved by the metadata API.
// Constructed fresh per fetch and never mutated afterwards.
type Media struct {
	// Title is the asset caption as reported upstream.
	Title string `json:"title"`
	// Region is the two-letter upload region code.
	Region string `json:"region"`
	// DurationSeconds is the playback length in whole seconds.
	DurationSeconds int `json:"duration_seconds"`
	// Cover is the thumbnail URL, when the asset has one.
	Cover mo.Option[string] `json:"cover"`
	// Variants maps every selectable representation to its download URL.
	// A None value means the variant is unavailable for this asset, which is
	// distinct from a Variant key the enumeration does not define at all.
	Variants map[Variant]mo.Option[string] `json:"variants"`
}

// VariantURL returns the download URL for the requested variant.
// None is returned both for unavailable variants and unrecognized kinds.
func (m *Media) VariantURL(v Variant) mo.Option[string] {
	url, ok := m.Variants[v]
	if !ok {
		return mo.None[string]()
	}
	return url
}

// Filename derives the destination file name for a variant from the sanitized
// title and the variant's extension.
func (m *Media) Filename(v Variant) string {
	title := util.SanitizeFilename(m.Title)
	if title == "" {
		title = "untitled"
	}
	return title + v.Extension()
}

// Duration renders the asset length as human-readable text.
func (m *Media) Duration() string {
	return util.FormatDuration(m.DurationSeconds)
}
