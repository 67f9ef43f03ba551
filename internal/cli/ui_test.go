package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/trackdash/pkg/stats"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name      string
		tracks    int
		skipped   int
		positions int
		cached    bool
		want      []string
		notWant   []string
	}{
		{"fresh", 1200, 0, 1180, false, []string{"1,200 tracks", "1,180 positions", iconFresh}, []string{"skipped"}},
		{"cached with skips", 26, 2, 0, true, []string{"26 tracks", "2 skipped", iconCached}, []string{"positions"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := statsLine(tt.tracks, tt.skipped, tt.positions, tt.cached)
			for _, s := range tt.want {
				if !strings.Contains(line, s) {
					t.Errorf("line %q missing %q", line, s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(line, s) {
					t.Errorf("line %q should not contain %q", line, s)
				}
			}
		})
	}
}

func TestKPITable(t *testing.T) {
	out := kpiTable(stats.KPIs{
		Songs:          28356,
		Artists:        10692,
		Genres:         6,
		Subgenres:      24,
		FirstYear:      2000,
		LastYear:       2020,
		MeanPopularity: 42.48,
	})
	for _, want := range []string{"Songs", "28,356", "10,692", "Subgenres", "2000", "2020", "42.5"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestGenreTableAndSparse(t *testing.T) {
	shares := []stats.Share{
		{Genre: "pop", Count: 120, Percent: 60},
		{Genre: "r&b", Count: 3, Percent: 1.5},
	}
	out := genreTable(shares)
	for _, want := range []string{"Genre", "POP", "R&B", "120", "60.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	if got := sparseGenres(shares, []string{"pop", "r&b"}); len(got) != 1 || got[0] != "r&b" {
		t.Errorf("sparseGenres() = %v, want [r&b]", got)
	}
	if got := sparseGenres(shares, []string{"pop"}); len(got) != 0 {
		t.Errorf("unselected genres should not be reported: %v", got)
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("0123456789abcdef"); got != "0123456789ab" {
		t.Errorf("shortHash() = %q", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash() = %q", got)
	}
}
