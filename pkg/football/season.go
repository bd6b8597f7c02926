package football

import (
	"fmt"
	"strings"
	"time"

	"github.com/richard-senior/betscout/pkg/util"
)

// SeasonForDate returns the provider season year for a kickoff. European seasons start in
// July, so a January fixture belongs to the previous year's season.
func SeasonForDate(t time.Time) int {
	if t.Month() >= time.July {
		return t.Year()
	}
	return t.Year() - 1
}

// ParseSeason accepts 2024, "2024", "2024/2025", "2024-25" or "2024/25" and returns the
// first year, which is how the provider keys seasons.
func ParseSeason(season any) (int, error) {
	if season == nil {
		return 0, fmt.Errorf("must pass a season")
	}
	ss, err := util.GetAsString(season)
	if err != nil {
		return 0, err
	}
	ss = strings.TrimSpace(ss)
	if len(ss) >= 7 && (ss[4] == '/' || ss[4] == '-') {
		ss = ss[:4]
	}
	if len(ss) != 4 {
		return 0, fmt.Errorf("invalid season format: %v", season)
	}
	year, err := util.GetAsInteger(ss)
	if err != nil {
		return 0, fmt.Errorf("invalid season format: %v", season)
	}
	return year, nil
}

// SeasonLabel renders a season year as "2024/2025"
func SeasonLabel(year int) string {
	return fmt.Sprintf("%d/%d", year, year+1)
}
