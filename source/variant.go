// Package source defines the domain model for fetched media metadata.
package source

import "fmt"

// Variant identifies one selectable media representation of a source asset.
type Variant string

const (
	StandardVideo Variant = "video"
	HDVideo       Variant = "hd"
	CoverImage    Variant = "cover"
	Music         Variant = "music"
)

// Variants returns the fixed enumeration of selectable representations, in display order.
func Variants() []Variant {
	return []Variant{StandardVideo, HDVideo, CoverImage, Music}
}

// ParseVariant resolves a user-supplied identifier to a Variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q (expected one of video, hd, cover, music)", s)
}

// Extension returns the file extension associated with the variant.
func (v Variant) Extension() string {
	switch v {
	case CoverImage:
		return ".jpg"
	case Music:
		return ".mp3"
	default:
		return ".mp4"
	}
}

// Description returns a human-readable label for the variant.
func (v Variant) Description() string {
	switch v {
	case StandardVideo:
		return "Standard Video"
	case HDVideo:
		return "HD Video"
	case CoverImage:
		return "Cover Image"
	case Music:
		return "Music"
	default:
		return string(v)
	}
}

func (v Variant) String() string {
	return string(v)
}
