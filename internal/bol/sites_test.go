package bol

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultSiteRegistry(t *testing.T) {
	r := DefaultSiteRegistry()
	sites := r.Sites()
	if len(sites) < 2 {
		t.Fatalf("got %d bundled sites, want at least 2", len(sites))
	}

	s, ok := r.Match("Site:\nLittle Falls Distribution Cent\n", RoleOrigin)
	if !ok || s.CityState() != "LITTLE FALLS, NY" {
		t.Errorf("origin match = %+v, %v", s, ok)
	}
	if _, ok := r.Match("Site:\nLITTLE FALLS DISTRIBUTION CENT\n", RoleDestination); ok {
		t.Error("origin site matched as destination")
	}
	s, ok = r.Match("Deliver to: MONTVILLE, NJ 07045", RoleDestination)
	if !ok || s.CityState() != "MONTVILLE, NJ" {
		t.Errorf("destination match = %+v, %v", s, ok)
	}
	s, ok = r.Match("Deliver to: PLAINFIELD, NJ 07060", RoleDestination)
	if !ok || s.CityState() != "PLAINFIELD, NJ" {
		t.Errorf("destination match = %+v, %v", s, ok)
	}
	s, ok = r.Match("MONTVILLE, NJ 07045\nPLAINFIELD, NJ 07060", RoleDestination)
	if !ok || s.CityState() != "MONTVILLE, NJ" {
		t.Errorf("first listed destination should win, got %+v, %v", s, ok)
	}
}

func TestLoadSiteRegistry(t *testing.T) {
	doc := `
sites:
  - name: RIVERSIDE MILL
    city: Dayton
    state: OH
    role: origin
  - city: Albany
    state: NY
    role: destination
    markers: ['ALBANY, NY\s+122\d{2}']
`
	r, err := LoadSiteRegistry(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(r.Sites()); got != 2 {
		t.Fatalf("got %d sites, want 2", got)
	}
	if s, ok := r.Match("pickup at riverside mill", RoleOrigin); !ok || s.City != "Dayton" {
		t.Errorf("name match = %+v, %v", s, ok)
	}
	if _, ok := r.Match("Albany, NY 12207", RoleDestination); !ok {
		t.Error("marker did not match")
	}
	if _, ok := r.Match("Albany, NY 10001", RoleDestination); ok {
		t.Error("marker matched the wrong ZIP")
	}
}

func TestLoadSiteRegistryEmpty(t *testing.T) {
	r, err := LoadSiteRegistry(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if len(r.Sites()) != 0 {
		t.Errorf("got %d sites, want 0", len(r.Sites()))
	}
}

func TestLoadSiteRegistryErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad role", "sites:\n  - {name: X, city: A, state: NY, role: pickup}\n", "role must be"},
		{"missing state", "sites:\n  - {name: X, city: A, role: origin}\n", "city and state"},
		{"no name or marker", "sites:\n  - {city: A, state: NY, role: origin}\n", "name or at least one marker"},
		{"bad marker", "sites:\n  - {city: A, state: NY, role: origin, markers: ['(']}\n", "marker"},
		{"unknown key", "sites:\n  - {name: X, city: A, state: NY, role: origin, zip: '12345'}\n", "decode sites"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSiteRegistry(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadSiteRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.yaml")
	doc := "sites:\n  - {name: HARBOR DC, city: Newark, state: NJ, role: destination}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadSiteRegistryFile(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewParser(WithSiteRegistry(r))
	if err != nil {
		t.Fatal(err)
	}
	rec := p.Parse("CONSIGNEE\nHARBOR DC\n")
	if got := deref(rec.DestinationCity); got != "Newark, NJ" {
		t.Errorf("destination_city = %s, want Newark, NJ", got)
	}

	if _, err := LoadSiteRegistryFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestCityResolution(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		origin      string
		destination string
	}{
		{"known origin site by name", "Site:\nLITTLE FALLS DISTRIBUTION CENT\n", "LITTLE FALLS, NY", "<nil>"},
		{"generic pairs in text order", "From: Springfield, IL 62701\nTo: Dayton, OH 45402", "Springfield, IL", "Dayton, OH"},
		{"generic fills remaining slot", "LITTLE FALLS, NY 13365\nAlbany, NY 12207", "LITTLE FALLS, NY", "Albany, NY"},
		{"known destination only", "Deliver to: MONTVILLE, NJ 07045", "<nil>", "MONTVILLE, NJ"},
		{"both known sites", "LITTLE FALLS, NY 13365\nMONTVILLE, NJ 07045", "LITTLE FALLS, NY", "MONTVILLE, NJ"},
		{"no city", "Carrier:\nACME TRUCKING", "<nil>", "<nil>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.text)
			if got := deref(rec.OriginCity); got != tt.origin {
				t.Errorf("origin_city = %s, want %s", got, tt.origin)
			}
			if got := deref(rec.DestinationCity); got != tt.destination {
				t.Errorf("destination_city = %s, want %s", got, tt.destination)
			}
		})
	}
}
