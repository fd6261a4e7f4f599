// Package history provides the implementation for tracking and persisting completed downloads.
package history

import (
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/source"
	"github.com/tokgrab-cli/tokgrab/transfer"
	"github.com/tokgrab-cli/tokgrab/where"
	"golang.org/x/exp/slices"
)

// cacher provides an abstracted, disk-backed registry for download records.
var cacher = gache.New[map[string]*Saved](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of download records from the persistent store.
func Get() (map[string]*Saved, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Saved), nil
	}
	return cached, nil
}

// Save persists a completed download to the history registry. Re-downloading
// the same link and variant replaces the earlier record.
func Save(media *source.Media, link string, variant source.Variant, outcome transfer.Outcome) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSaved(media, link, variant, outcome)
	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes a specific download record from the history registry.
func Remove(record *Saved) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}

// List returns every download record, most recent first.
func List() ([]*Saved, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	records := lo.Values(saved)
	slices.SortFunc(records, func(a, b *Saved) int {
		return int(b.Timestamp - a.Timestamp)
	})
	return records, nil
}

// Search returns the records whose titles fuzzily match the query, closest
// title first.
func Search(query string) ([]*Saved, error) {
	records, err := List()
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return records, nil
	}

	matched := lo.Filter(records, func(r *Saved, _ int) bool {
		return fuzzy.MatchFold(query, r.Title)
	})

	slices.SortStableFunc(matched, func(a, b *Saved) int {
		return levenshtein.Distance(query, strings.ToLower(a.Title)) -
			levenshtein.Distance(query, strings.ToLower(b.Title))
	})
	return matched, nil
}
