// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestBuildRobots(t *testing.T) {
	got := BuildRobots(RobotsConfig{SiteURL: "https://example.com/"})

	for _, want := range []string{
		"User-agent: *\n",
		"Disallow: /admin\n",
		"Disallow: /account\n",
		"Allow: /\n",
		"Sitemap: https://example.com/sitemap.xml\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, got)
		}
	}
}

func TestBuildRobots_DisallowAll(t *testing.T) {
	got := BuildRobots(RobotsConfig{SiteURL: "https://example.com", DisallowAll: true})
	if got != "User-agent: *\nDisallow: /\n" {
		t.Errorf("robots.txt = %q", got)
	}
}

func TestBuildRobots_ExtraPaths(t *testing.T) {
	got := BuildRobots(RobotsConfig{DisallowPaths: []string{"/private"}})
	if !strings.Contains(got, "Disallow: /private\n") {
		t.Errorf("extra path missing:\n%s", got)
	}
	if strings.Contains(got, "Sitemap:") {
		t.Error("no sitemap line without a site URL")
	}
	if len(DefaultDisallow) != 3 {
		t.Errorf("DefaultDisallow was modified: %v", DefaultDisallow)
	}
}

func TestGenerateSitemap(t *testing.T) {
	updated := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	out, err := GenerateSitemap("https://example.com/", []SitemapEvent{
		{ID: 7, UpdatedAt: updated},
		{ID: 9},
	})
	if err != nil {
		t.Fatalf("GenerateSitemap: %v", err)
	}
	if !strings.HasPrefix(string(out), xml.Header) {
		t.Error("missing XML header")
	}

	var sm Sitemap
	if err := xml.Unmarshal(out, &sm); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(sm.URLs) != 4 {
		t.Fatalf("got %d urls, want 4", len(sm.URLs))
	}
	if sm.URLs[0].Loc != "https://example.com/events" {
		t.Errorf("first Loc = %q", sm.URLs[0].Loc)
	}
	if sm.URLs[2].Loc != "https://example.com/events/7" || sm.URLs[2].LastMod != "2026-03-04T10:00:00Z" {
		t.Errorf("event url = %+v", sm.URLs[2])
	}
	if sm.URLs[3].LastMod != "" {
		t.Errorf("zero UpdatedAt should omit lastmod, got %q", sm.URLs[3].LastMod)
	}
}
