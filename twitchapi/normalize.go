package twitchapi

import (
	"net/url"
	"strconv"
	"strings"
)

// RenderThumbnail substitutes the %{width}x%{height} placeholder tokens Twitch
// uses in VOD thumbnail URL templates with concrete pixel dimensions.
func RenderThumbnail(template string, width, height int) string {
	s := strings.ReplaceAll(template, "%{width}", strconv.Itoa(width))
	return strings.ReplaceAll(s, "%{height}", strconv.Itoa(height))
}

// ClipSlug derives the clip slug used by Twitch player embeds. It prefers the
// embed URL's "clip" query parameter, then the /clip/<slug> path segment of
// the canonical URL, and falls back to the raw clip id.
func ClipSlug(embedURL, canonicalURL, id string) string {
	if u, err := url.Parse(embedURL); err == nil {
		if slug := u.Query().Get("clip"); slug != "" {
			return slug
		}
	}
	if u, err := url.Parse(canonicalURL); err == nil {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, p := range parts {
			if p == "clip" && i+1 < len(parts) && parts[i+1] != "" {
				return parts[i+1]
			}
		}
	}
	return id
}
