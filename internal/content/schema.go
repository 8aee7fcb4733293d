package content

import (
	"database/sql"
	"fmt"
	"time"

	"portfolio-backend/internal/remote"
)

type setter[T any] func(rec *T, v any) error

func applyWith[T any](setters map[string]setter[T]) func(*T, remote.Fields) error {
	return func(rec *T, fields remote.Fields) error {
		for _, col := range fields.Columns() {
			set, ok := setters[col]
			if !ok {
				return fmt.Errorf("unknown column %q", col)
			}
			if err := set(rec, fields[col]); err != nil {
				return fmt.Errorf("%s: %w", col, err)
			}
		}
		return nil
	}
}

func setString[T any](field func(*T) *string) setter[T] {
	return func(rec *T, v any) error {
		s, err := remote.AsString(v)
		if err != nil {
			return err
		}
		*field(rec) = s
		return nil
	}
}

func setBool[T any](field func(*T) *bool) setter[T] {
	return func(rec *T, v any) error {
		b, err := remote.AsBool(v)
		if err != nil {
			return err
		}
		*field(rec) = b
		return nil
	}
}

func setInt[T any](field func(*T) *int) setter[T] {
	return func(rec *T, v any) error {
		n, err := remote.AsInt(v)
		if err != nil {
			return err
		}
		*field(rec) = n
		return nil
	}
}

func setStrings[T any](field func(*T) *[]string) setter[T] {
	return func(rec *T, v any) error {
		list, err := remote.AsStrings(v)
		if err != nil {
			return err
		}
		*field(rec) = list
		return nil
	}
}

// ProjectSchema maps Project onto the projects table.
var ProjectSchema = remote.Schema[Project]{
	Table: "projects",
	Columns: []string{
		"id", "title", "description", "technologies",
		"github_url", "demo_url", "image_url", "featured", "created_at",
	},
	Scan: func(row remote.Scanner) (Project, error) {
		var (
			p                   Project
			techs               string
			github, demo, image sql.NullString
			created             remote.Timestamp
		)
		if err := row.Scan(&p.ID, &p.Title, &p.Description, &techs, &github, &demo, &image, &p.Featured, &created); err != nil {
			return Project{}, err
		}
		list, err := remote.DecodeList(techs)
		if err != nil {
			return Project{}, err
		}
		p.Technologies = list
		p.GithubURL, p.DemoURL, p.ImageURL = github.String, demo.String, image.String
		p.CreatedAt = created.Time
		return p, nil
	},
	Apply: applyWith(map[string]setter[Project]{
		"title":        setString(func(p *Project) *string { return &p.Title }),
		"description":  setString(func(p *Project) *string { return &p.Description }),
		"technologies": setStrings(func(p *Project) *[]string { return &p.Technologies }),
		"github_url":   setString(func(p *Project) *string { return &p.GithubURL }),
		"demo_url":     setString(func(p *Project) *string { return &p.DemoURL }),
		"image_url":    setString(func(p *Project) *string { return &p.ImageURL }),
		"featured":     setBool(func(p *Project) *bool { return &p.Featured }),
	}),
	Stamp: func(p *Project, id string, createdAt time.Time) {
		p.ID, p.CreatedAt = id, createdAt
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
	},
	ID:        func(p Project) string { return p.ID },
	CreatedAt: func(p Project) time.Time { return p.CreatedAt },
}

// ExperienceSchema maps Experience onto the experience table.
var ExperienceSchema = remote.Schema[Experience]{
	Table: "experience",
	Columns: []string{
		"id", "title", "company", "location", "start_date",
		"end_date", "current", "description", "created_at",
	},
	Scan: func(row remote.Scanner) (Experience, error) {
		var (
			e        Experience
			location sql.NullString
			end      sql.NullString
			desc     string
			created  remote.Timestamp
		)
		if err := row.Scan(&e.ID, &e.Title, &e.Company, &location, &e.StartDate, &end, &e.Current, &desc, &created); err != nil {
			return Experience{}, err
		}
		list, err := remote.DecodeList(desc)
		if err != nil {
			return Experience{}, err
		}
		e.Location, e.EndDate = location.String, end.String
		e.Description = list
		e.CreatedAt = created.Time
		return e, nil
	},
	Apply: applyWith(map[string]setter[Experience]{
		"title":       setString(func(e *Experience) *string { return &e.Title }),
		"company":     setString(func(e *Experience) *string { return &e.Company }),
		"location":    setString(func(e *Experience) *string { return &e.Location }),
		"start_date":  setString(func(e *Experience) *string { return &e.StartDate }),
		"end_date":    setString(func(e *Experience) *string { return &e.EndDate }),
		"current":     setBool(func(e *Experience) *bool { return &e.Current }),
		"description": setStrings(func(e *Experience) *[]string { return &e.Description }),
	}),
	Stamp: func(e *Experience, id string, createdAt time.Time) {
		e.ID, e.CreatedAt = id, createdAt
		if e.Description == nil {
			e.Description = []string{}
		}
	},
	ID:        func(e Experience) string { return e.ID },
	CreatedAt: func(e Experience) time.Time { return e.CreatedAt },
}

// SkillSchema maps Skill onto the skills table.
var SkillSchema = remote.Schema[Skill]{
	Table:   "skills",
	Columns: []string{"id", "name", "level", "category", "created_at"},
	Scan: func(row remote.Scanner) (Skill, error) {
		var (
			s       Skill
			created remote.Timestamp
		)
		if err := row.Scan(&s.ID, &s.Name, &s.Level, &s.Category, &created); err != nil {
			return Skill{}, err
		}
		s.CreatedAt = created.Time
		return s, nil
	},
	Apply: applyWith(map[string]setter[Skill]{
		"name":     setString(func(s *Skill) *string { return &s.Name }),
		"level":    setInt(func(s *Skill) *int { return &s.Level }),
		"category": setString(func(s *Skill) *string { return &s.Category }),
	}),
	Stamp: func(s *Skill, id string, createdAt time.Time) {
		s.ID, s.CreatedAt = id, createdAt
	},
	ID:        func(s Skill) string { return s.ID },
	CreatedAt: func(s Skill) time.Time { return s.CreatedAt },
}
