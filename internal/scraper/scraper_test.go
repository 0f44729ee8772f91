package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	s := New(Config{SiteURL: "https://example.toastmastersclubs.org/"})

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.cfg.AgendaURL != "https://example.toastmastersclubs.org/agenda.html" {
		t.Errorf("AgendaURL = %q", s.cfg.AgendaURL)
	}
	if s.cfg.Timeout != Timeout {
		t.Errorf("Timeout = %v, want %v", s.cfg.Timeout, Timeout)
	}

	d := New(Config{})
	if d.cfg.SiteURL != DefaultSiteURL || d.cfg.AgendaURL != DefaultAgendaURL {
		t.Errorf("defaults not applied: %+v", d.cfg)
	}
}

func TestFetchAgendas_MissingCredentials(t *testing.T) {
	s := New(Config{ClubNumber: "1234"})

	result, err := s.FetchAgendas(context.Background(), time.Now(), nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("FetchAgendas() error = %v, want ErrMissingCredentials", err)
	}
	if result == nil {
		t.Error("FetchAgendas() should return a result even on error")
	}
}

func TestSelectOptions(t *testing.T) {
	raw := []rawOption{
		{Value: "", Label: "Select a meeting"},
		{Value: "901", Label: "Tuesday, July 15, 2025"},
		{Value: "899", Label: "Tuesday, July 1, 2025"},
		{Value: "900", Label: "Tuesday, July 8, 2025"},
		{Value: "x", Label: "View Another Club's Agenda"},
		{Value: "777", Label: "Special Event"},
	}
	target := time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC)

	options, warnings := selectOptions(raw, target)

	if len(options) != 2 {
		t.Fatalf("selectOptions() returned %d options, want 2: %+v", len(options), options)
	}
	if options[0].Value != "899" || options[1].Value != "900" {
		t.Errorf("options not sorted oldest first: %+v", options)
	}
	if len(warnings) != 1 || warnings[0] != "Could not parse date from: Special Event" {
		t.Errorf("warnings = %v", warnings)
	}
}
