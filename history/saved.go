package history

import (
	"fmt"
	"time"

	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/transfer"
	"github.com/tokgrab-cli/tokgrab/util"
)

// Saved represents a single completed download preserved in the user's history.
type Saved struct {
	Timestamp int64          `json:"timestamp"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Variant   source.Variant `json:"variant"`
	Path      string         `json:"path"`
	Bytes     int64          `json:"bytes"`
}

func (s *Saved) encode() string {
	return fmt.Sprintf("%s (%s)", s.URL, s.Variant)
}

func (s *Saved) String() string {
	return fmt.Sprintf("%s [%s, %s]", s.Title, s.Variant.Description(), util.FormatBytes(s.Bytes))
}

// When renders the record's timestamp in the local timezone.
func (s *Saved) When() string {
	return time.Unix(s.Timestamp, 0).Format("2006-01-02 15:04")
}

func newSaved(media *source.Media, link string, variant source.Variant, outcome transfer.Outcome) *Saved {
	return &Saved{
		Timestamp: time.Now().Unix(),
		Title:     media.Title,
		URL:       link,
		Variant:   variant,
		Path:      outcome.Path,
		Bytes:     outcome.Bytes,
	}
}
