// Package tagging derives keyword tags from free text. It is pure and holds
// no state; tags are recomputed whenever they are needed.
package tagging

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"market/internal/domain/entity"
)

const minTagLength = 3

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "can": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "me": {}, "him": {},
	"her": {}, "us": {}, "them": {}, "my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {},
}

// TagCount is a tag with the number of records carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Extract returns the sorted, de-duplicated lowercase keywords of text,
// excluding stop words and words shorter than three characters.
func Extract(text string) []string {
	if text == "" {
		return []string{}
	}

	set := make(map[string]struct{})
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(word) < minTagLength {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		set[word] = struct{}{}
	}

	return sortedKeys(set)
}

// ForItem tags an item from its name, description, category name, stored
// tags and any extra tags supplied by the caller.
func ForItem(item *entity.Item, categoryName string, custom ...string) []string {
	set := make(map[string]struct{})
	addAll(set, Extract(item.Name))
	if item.Description != nil {
		addAll(set, Extract(*item.Description))
	}
	if categoryName != "" {
		addLower(set, categoryName)
	}
	for _, tag := range item.Tags {
		addLower(set, tag)
	}
	for _, tag := range custom {
		addLower(set, tag)
	}

	return sortedKeys(set)
}

// ForBusiness tags a business from its name, description and extra tags.
func ForBusiness(business *entity.Business, custom ...string) []string {
	set := make(map[string]struct{})
	addAll(set, Extract(business.Name))
	if business.Description != nil {
		addAll(set, Extract(*business.Description))
	}
	for _, tag := range custom {
		addLower(set, tag)
	}

	return sortedKeys(set)
}

// MatchesAny reports whether tags shares at least one entry with wanted.
func MatchesAny(tags, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(tags, strings.ToLower(w)) {
			return true
		}
	}

	return false
}

// Popular counts tags across tagSets and returns the limit most frequent,
// ties broken alphabetically.
func Popular(tagSets [][]string, limit int) []TagCount {
	counts := make(map[string]int)
	for _, tags := range tagSets {
		for _, tag := range tags {
			counts[tag]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, TagCount{Tag: tag, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}

		return result[i].Tag < result[j].Tag
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

func addAll(set map[string]struct{}, tags []string) {
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
}

func addLower(set map[string]struct{}, tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		set[tag] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
