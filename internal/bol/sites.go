package bol

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role says which end of a shipment a site is.
type Role string

const (
	RoleOrigin      Role = "origin"
	RoleDestination Role = "destination"
)

// Site is a known facility. When any marker (or the name itself) appears in
// a document, the site's city and state are assigned to its role.
type Site struct {
	Name    string   `yaml:"name"`
	City    string   `yaml:"city"`
	State   string   `yaml:"state"`
	Role    Role     `yaml:"role"`
	Markers []string `yaml:"markers"`
}

// CityState is the value stored in origin_city / destination_city.
func (s Site) CityState() string {
	return strings.TrimSpace(s.City) + ", " + strings.TrimSpace(s.State)
}

type registeredSite struct {
	Site
	name    *regexp.Regexp
	markers []*regexp.Regexp
}

func (s registeredSite) matches(text string) bool {
	if s.name != nil && s.name.MatchString(text) {
		return true
	}
	for _, m := range s.markers {
		if m.MatchString(text) {
			return true
		}
	}
	return false
}

// SiteRegistry is an ordered, read-only set of known sites.
type SiteRegistry struct {
	sites []registeredSite
}

//go:embed sites.yaml
var defaultSitesYAML []byte

// DefaultSiteRegistry returns the sites bundled with the binary.
func DefaultSiteRegistry() *SiteRegistry {
	r, err := LoadSiteRegistry(bytes.NewReader(defaultSitesYAML))
	if err != nil {
		panic(fmt.Sprintf("bol: bundled sites.yaml: %v", err))
	}
	return r
}

// NewSiteRegistry validates and compiles sites, keeping their order.
func NewSiteRegistry(sites ...Site) (*SiteRegistry, error) {
	r := &SiteRegistry{}
	for i, s := range sites {
		s.Name = strings.TrimSpace(s.Name)
		if strings.TrimSpace(s.City) == "" || strings.TrimSpace(s.State) == "" {
			return nil, fmt.Errorf("site %d: city and state are required", i)
		}
		if s.Role != RoleOrigin && s.Role != RoleDestination {
			return nil, fmt.Errorf("site %d: role must be %q or %q, got %q", i, RoleOrigin, RoleDestination, s.Role)
		}
		if s.Name == "" && len(s.Markers) == 0 {
			return nil, fmt.Errorf("site %d: a name or at least one marker is required", i)
		}
		rs := registeredSite{Site: s}
		if s.Name != "" {
			rs.name = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(s.Name))
		}
		for _, m := range s.Markers {
			re, err := regexp.Compile(`(?i)` + m)
			if err != nil {
				return nil, fmt.Errorf("site %d: marker %q: %w", i, m, err)
			}
			rs.markers = append(rs.markers, re)
		}
		r.sites = append(r.sites, rs)
	}
	return r, nil
}

type sitesFile struct {
	Sites []Site `yaml:"sites"`
}

// LoadSiteRegistry reads a YAML document with a top-level "sites" list.
func LoadSiteRegistry(rd io.Reader) (*SiteRegistry, error) {
	var f sitesFile
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode sites: %w", err)
	}
	return NewSiteRegistry(f.Sites...)
}

// LoadSiteRegistryFile is LoadSiteRegistry over a file.
func LoadSiteRegistryFile(path string) (*SiteRegistry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadSiteRegistry(f)
}

// Sites returns the registered sites in order.
func (r *SiteRegistry) Sites() []Site {
	if r == nil {
		return nil
	}
	out := make([]Site, len(r.sites))
	for i, s := range r.sites {
		out[i] = s.Site
	}
	return out
}

// Match returns the first site of role that appears in text.
func (r *SiteRegistry) Match(text string, role Role) (Site, bool) {
	if r == nil {
		return Site{}, false
	}
	for _, s := range r.sites {
		if s.Role == role && s.matches(text) {
			return s.Site, true
		}
	}
	return Site{}, false
}

// CityResolver assigns origin and destination cities: known sites first,
// then the generic City, ST ZIP rules fill whatever is still unset.
type CityResolver struct {
	sites    *SiteRegistry
	rules    []*compiledRule
	validate Validator
	logger   *slog.Logger
}

// Resolve returns the origin and destination city, nil when absent.
func (c *CityResolver) Resolve(text string) (origin, destination *string) {
	var o, d string
	if s, ok := c.sites.Match(text, RoleOrigin); ok {
		o = s.CityState()
	}
	if s, ok := c.sites.Match(text, RoleDestination); ok {
		d = s.CityState()
	}

	for _, r := range c.rules {
		if o != "" && d != "" {
			break
		}
		found, err := r.tryEvaluateAll(text)
		if err != nil {
			c.logger.Debug("rule.evaluate.failed", "field", "cities", "rule", r.index, "error", err)
			continue
		}
		for _, m := range found {
			v, ok := c.validate(m.Value)
			if !ok {
				continue
			}
			cs, _ := v.(string)
			if cs == "" || strings.EqualFold(cs, o) || strings.EqualFold(cs, d) {
				continue
			}
			if o == "" {
				o = cs
			} else if d == "" {
				d = cs
			}
			if o != "" && d != "" {
				break
			}
		}
	}

	if o != "" {
		origin = &o
	}
	if d != "" {
		destination = &d
	}
	return origin, destination
}
