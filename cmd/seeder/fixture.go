package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/langell/super-league-sub001/internal/league"
	"gopkg.in/yaml.v3"
)

// Fixture describes one league season in YAML.
type Fixture struct {
	League  string          `yaml:"league"`
	Season  string          `yaml:"season"`
	Members []FixtureMember `yaml:"members"`
	Teams   []FixtureTeam   `yaml:"teams"`
	Rounds  []FixtureRound  `yaml:"rounds"`
}

type FixtureMember struct {
	league.User `yaml:",inline"`
	Role        league.Role `yaml:"role"`
	Handicap    *float64    `yaml:"handicap"`
}

type FixtureTeam struct {
	Name string `yaml:"name"`
}

type FixtureRound struct {
	Date    time.Time      `yaml:"date"`
	Matches []FixtureMatch `yaml:"matches"`
}

// FixtureMatch refers to teams by name and players by user id.
type FixtureMatch struct {
	TeamA   string          `yaml:"team_a"`
	TeamB   string          `yaml:"team_b"`
	Players []FixturePlayer `yaml:"players"`
}

type FixturePlayer struct {
	User string `yaml:"user"`
	Team string `yaml:"team"`
}

type seedSummary struct {
	OrganizationID string
	Users          int
	Rounds         int
	Matches        int
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	if f.League == "" {
		return nil, fmt.Errorf("fixture %s has no league name", path)
	}
	if f.Season == "" {
		f.Season = "Season 1"
	}
	return &f, nil
}

// seed creates the league described by f. User ids from the fixture are kept
// so that matches can refer to them.
func seed(ctx context.Context, store league.LeagueStore, f *Fixture) (*seedSummary, error) {
	org, err := store.CreateOrganization(ctx, f.League)
	if err != nil {
		return nil, err
	}
	summary := &seedSummary{OrganizationID: org.ID}

	for _, m := range f.Members {
		user, err := store.UpsertUser(ctx, m.User)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		if _, err := store.AddMember(ctx, org.ID, user.ID, m.Role, m.Handicap); err != nil {
			return nil, fmt.Errorf("member %s: %w", m.Name, err)
		}
		summary.Users++
	}

	teams := map[string]string{}
	for _, t := range f.Teams {
		team, err := store.CreateTeam(ctx, org.ID, t.Name)
		if err != nil {
			return nil, err
		}
		teams[t.Name] = team.ID
	}
	teamID := func(name string) (string, error) {
		if name == "" {
			return "", nil
		}
		id, ok := teams[name]
		if !ok {
			return "", fmt.Errorf("unknown team %q", name)
		}
		return id, nil
	}

	season, err := store.CreateSeason(ctx, org.ID, f.Season)
	if err != nil {
		return nil, err
	}

	for _, r := range f.Rounds {
		round, err := store.CreateRound(ctx, season.ID, r.Date)
		if err != nil {
			return nil, err
		}
		summary.Rounds++

		for _, m := range r.Matches {
			nm := league.NewMatch{RoundID: round.ID}
			if nm.TeamA, err = teamID(m.TeamA); err != nil {
				return nil, err
			}
			if nm.TeamB, err = teamID(m.TeamB); err != nil {
				return nil, err
			}
			for _, p := range m.Players {
				tid, err := teamID(p.Team)
				if err != nil {
					return nil, err
				}
				nm.Players = append(nm.Players, league.NewMatchPlayer{UserID: p.User, TeamID: tid})
			}
			match, err := store.CreateMatch(ctx, nm)
			if err != nil {
				return nil, fmt.Errorf("match on %s: %w", r.Date.Format(time.DateOnly), err)
			}
			log.Debug("Seeded match", "id", match.ID, "players", len(match.Players))
			summary.Matches++
		}
	}
	return summary, nil
}
