// Package db ships the SQL migrations and the development seed fixture.
package db

import (
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Migrations holds the goose migrations for PostgreSQL under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

//go:embed seed/seed.yml
var seedFixture []byte

type SeedUser struct {
	ID        int64  `yaml:"id"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Role      string `yaml:"role"`
	ManagerID *int64 `yaml:"managerId"`
}

type SeedVacationRequest struct {
	UserID      int64  `yaml:"userId"`
	StartDate   string `yaml:"startDate"`
	EndDate     string `yaml:"endDate"`
	Status      string `yaml:"status"`
	Description string `yaml:"description"`
}

type Seed struct {
	Users            []SeedUser            `yaml:"users"`
	VacationRequests []SeedVacationRequest `yaml:"vacationRequests"`
}

// LoadSeed parses the embedded fixture.
func LoadSeed() (*Seed, error) {
	return ParseSeed(seedFixture)
}

func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed fixture: %w", err)
	}
	for i, r := range s.VacationRequests {
		for _, d := range []string{r.StartDate, r.EndDate} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return nil, fmt.Errorf("seed vacation request %d: invalid date %q", i, d)
			}
		}
	}
	return &s, nil
}
