package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/util"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultData []byte

// file layout of catalog.yaml
type document struct {
	Leagues struct {
		DefaultWeight   float64 `yaml:"default_weight"`
		WeakFederations struct {
			Weight    float64  `yaml:"weight"`
			Countries []string `yaml:"countries"`
		} `yaml:"weak_federations"`
		Top struct {
			Weight  float64 `yaml:"weight"`
			Leagues []struct {
				Name    string `yaml:"name"`
				Country string `yaml:"country"`
			} `yaml:"leagues"`
		} `yaml:"top"`
		Tiers []struct {
			Weight   float64  `yaml:"weight"`
			Patterns []string `yaml:"patterns"`
		} `yaml:"tiers"`
	} `yaml:"leagues"`
	Prestige []struct {
		Name  string   `yaml:"name"`
		Bonus float64  `yaml:"bonus"`
		Squad float64  `yaml:"squad"`
		Clubs []string `yaml:"clubs"`
	} `yaml:"prestige"`
	Aliases      map[string][]string `yaml:"aliases"`
	Rivalries    [][]string          `yaml:"rivalries"`
	Competitions struct {
		Knockout        []string `yaml:"knockout"`
		Friendly        []string `yaml:"friendly"`
		CrucialRounds   []string `yaml:"crucial_rounds"`
		LateSeasonRound int      `yaml:"late_season_round"`
	} `yaml:"competitions"`
}

// Tier is a prestige classification. The zero Tier is an unclassified club.
type Tier struct {
	Name  string  `json:"name"`
	Bonus float64 `json:"bonus"`
	Squad float64 `json:"squad"`
}

type tieredPatterns struct {
	weight   float64
	patterns []string
}

// Catalog answers the categorical questions the structural model asks about leagues, clubs
// and competitions. It is immutable once built and safe for concurrent use.
type Catalog struct {
	defaultWeight  float64
	weakWeight     float64
	weakCountries  map[string]bool
	topWeight      float64
	topLeagues     map[string]bool // "name|country", country empty when any
	tiers          []tieredPatterns
	clubs          map[string]Tier   // normalised canonical name -> tier
	aliases        map[string]string // normalised alias -> normalised canonical name
	rivalries      map[[2]string]bool
	knockout       []string
	friendly       []string
	crucialRounds  []string
	lateSeasonFrom int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalogue embedded in the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultData)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load reads a replacement catalogue from a YAML file. An empty path returns Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if doc.Leagues.DefaultWeight <= 0 {
		return nil, fmt.Errorf("catalog leagues.default_weight must be positive")
	}

	c := &Catalog{
		defaultWeight:  doc.Leagues.DefaultWeight,
		weakWeight:     doc.Leagues.WeakFederations.Weight,
		weakCountries:  map[string]bool{},
		topWeight:      doc.Leagues.Top.Weight,
		topLeagues:     map[string]bool{},
		clubs:          map[string]Tier{},
		aliases:        map[string]string{},
		rivalries:      map[[2]string]bool{},
		knockout:       normaliseAll(doc.Competitions.Knockout),
		friendly:       normaliseAll(doc.Competitions.Friendly),
		crucialRounds:  normaliseAll(doc.Competitions.CrucialRounds),
		lateSeasonFrom: doc.Competitions.LateSeasonRound,
	}
	for _, country := range doc.Leagues.WeakFederations.Countries {
		c.weakCountries[util.Normalise(country)] = true
	}
	for _, l := range doc.Leagues.Top.Leagues {
		c.topLeagues[util.Normalise(l.Name)+"|"+util.Normalise(l.Country)] = true
	}
	for _, t := range doc.Leagues.Tiers {
		c.tiers = append(c.tiers, tieredPatterns{weight: t.Weight, patterns: normaliseAll(t.Patterns)})
	}
	for _, p := range doc.Prestige {
		tier := Tier{Name: p.Name, Bonus: p.Bonus, Squad: p.Squad}
		for _, club := range p.Clubs {
			key := util.Normalise(club)
			// first (highest) tier wins when a club is listed twice
			if _, exists := c.clubs[key]; !exists {
				c.clubs[key] = tier
			}
		}
	}
	for canonical, alts := range doc.Aliases {
		for _, alt := range alts {
			c.aliases[util.Normalise(alt)] = util.Normalise(canonical)
		}
	}
	for i, pair := range doc.Rivalries {
		if len(pair) != 2 {
			return nil, fmt.Errorf("catalog rivalry %d must name exactly two clubs", i)
		}
		c.rivalries[pairKey(c.canonical(pair[0]), c.canonical(pair[1]))] = true
	}
	return c, nil
}

/////////////////////////////////////////////////////////////////////////
////// Leagues
/////////////////////////////////////////////////////////////////////////

// LeagueWeight maps a league name and country to its tier weight.
// Weak federations are checked first, then stepped-down name patterns (so "2. Bundesliga" is
// never mistaken for the Bundesliga), then the named first divisions.
func (c *Catalog) LeagueWeight(name, country string) float64 {
	n, ctry := util.Normalise(name), util.Normalise(country)
	if ctry != "" && c.weakCountries[ctry] {
		return c.weakWeight
	}
	for _, t := range c.tiers {
		if containsAny(n, t.patterns) {
			return t.weight
		}
	}
	if c.topLeagues[n+"|"+ctry] {
		return c.topWeight
	}
	if c.topLeagues[n+"|"] {
		return c.topWeight
	}
	return c.defaultWeight
}

// DefaultWeight is the weight of an unrecognised league
func (c *Catalog) DefaultWeight() float64 {
	return c.defaultWeight
}

/////////////////////////////////////////////////////////////////////////
////// Clubs
/////////////////////////////////////////////////////////////////////////

func (c *Catalog) canonical(name string) string {
	n := util.Normalise(name)
	if alias, ok := c.aliases[n]; ok {
		return alias
	}
	return n
}

// Prestige returns the club's tier. Matching is on the whole normalised name or a declared
// alias, never a substring, so "Inter Miami" is not "Inter".
func (c *Catalog) Prestige(team string) Tier {
	return c.clubs[c.canonical(team)]
}

// IsRivalry reports whether the two clubs form a listed derby, in either order
func (c *Catalog) IsRivalry(a, b string) bool {
	return c.rivalries[pairKey(c.canonical(a), c.canonical(b))]
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

/////////////////////////////////////////////////////////////////////////
////// Competitions
/////////////////////////////////////////////////////////////////////////

var regularSeasonRound = regexp.MustCompile(`(?i)regular season\s*-\s*(\d+)`)

// IsFriendly reports whether the competition is a friendly
func (c *Catalog) IsFriendly(l football.League) bool {
	return containsAny(util.Normalise(l.Name), c.friendly)
}

// IsKnockout reports cup and continental knockout competitions. Friendlies are never knockouts.
func (c *Catalog) IsKnockout(l football.League) bool {
	if c.IsFriendly(l) {
		return false
	}
	if strings.EqualFold(l.Type, "cup") {
		return true
	}
	return containsAny(util.Normalise(l.Name), c.knockout)
}

// IsCrucial reports fixtures that decide something: finals and playoffs, or the last rounds
// of a league season
func (c *Catalog) IsCrucial(l football.League) bool {
	if l.Round == "" {
		return false
	}
	if containsAny(util.Normalise(l.Round), c.crucialRounds) {
		return true
	}
	if c.lateSeasonFrom <= 0 {
		return false
	}
	if m := regularSeasonRound.FindStringSubmatch(l.Round); m != nil {
		round, err := strconv.Atoi(m[1])
		return err == nil && round >= c.lateSeasonFrom
	}
	return false
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func normaliseAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, util.Normalise(s))
	}
	return out
}
