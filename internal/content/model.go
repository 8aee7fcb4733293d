package content

import (
	"fmt"
	"strings"
	"time"

	"portfolio-backend/internal/remote"
)

// Project is a portfolio project.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Technologies []string  `json:"technologies"`
	GithubURL    string    `json:"githubUrl,omitempty"`
	DemoURL      string    `json:"demoUrl,omitempty"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProjectInput is the payload for adding a project.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	GithubURL    string   `json:"githubUrl"`
	DemoURL      string   `json:"demoUrl"`
	ImageURL     string   `json:"imageUrl"`
	Featured     bool     `json:"featured"`
}

func (in ProjectInput) Validate() error {
	if err := requireText("title", in.Title); err != nil {
		return err
	}
	if err := requireText("description", in.Description); err != nil {
		return err
	}
	if err := optionalURL("githubUrl", in.GithubURL); err != nil {
		return err
	}
	if err := optionalURL("demoUrl", in.DemoURL); err != nil {
		return err
	}
	return optionalURL("imageUrl", in.ImageURL)
}

func (in ProjectInput) Fields() remote.Fields {
	return remote.Fields{
		"title":        in.Title,
		"description":  in.Description,
		"technologies": cloneStrings(in.Technologies),
		"github_url":   nullable(in.GithubURL),
		"demo_url":     nullable(in.DemoURL),
		"image_url":    nullable(in.ImageURL),
		"featured":     in.Featured,
	}
}

// ProjectPatch carries the fields of a partial project update. Nil fields
// are left untouched; an empty URL clears it.
type ProjectPatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
	GithubURL    *string   `json:"githubUrl,omitempty"`
	DemoURL      *string   `json:"demoUrl,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	Featured     *bool     `json:"featured,omitempty"`
}

func (p ProjectPatch) Validate() error {
	if err := requireTextPtr("title", p.Title); err != nil {
		return err
	}
	if err := requireTextPtr("description", p.Description); err != nil {
		return err
	}
	if err := optionalURLPtr("githubUrl", p.GithubURL); err != nil {
		return err
	}
	if err := optionalURLPtr("demoUrl", p.DemoURL); err != nil {
		return err
	}
	return optionalURLPtr("imageUrl", p.ImageURL)
}

func (p ProjectPatch) Fields() remote.Fields {
	f := remote.Fields{}
	if p.Title != nil {
		f["title"] = *p.Title
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	if p.Technologies != nil {
		f["technologies"] = cloneStrings(*p.Technologies)
	}
	if p.GithubURL != nil {
		f["github_url"] = nullable(*p.GithubURL)
	}
	if p.DemoURL != nil {
		f["demo_url"] = nullable(*p.DemoURL)
	}
	if p.ImageURL != nil {
		f["image_url"] = nullable(*p.ImageURL)
	}
	if p.Featured != nil {
		f["featured"] = *p.Featured
	}
	return f
}

// ApplyTo merges the patch over rec.
func (p ProjectPatch) ApplyTo(rec Project) Project {
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.Description != nil {
		rec.Description = *p.Description
	}
	if p.Technologies != nil {
		rec.Technologies = cloneStrings(*p.Technologies)
	}
	if p.GithubURL != nil {
		rec.GithubURL = *p.GithubURL
	}
	if p.DemoURL != nil {
		rec.DemoURL = *p.DemoURL
	}
	if p.ImageURL != nil {
		rec.ImageURL = *p.ImageURL
	}
	if p.Featured != nil {
		rec.Featured = *p.Featured
	}
	return rec
}

// Experience is one work history entry. StartDate and EndDate are kept as
// the free-form strings the admin enters.
type Experience struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate,omitempty"`
	Current     bool      `json:"current"`
	Description []string  `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ExperienceInput is the payload for adding an experience entry.
type ExperienceInput struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Current     bool     `json:"current"`
	Description []string `json:"description"`
}

func (in ExperienceInput) Validate() error {
	if err := requireText("title", in.Title); err != nil {
		return err
	}
	if err := requireText("company", in.Company); err != nil {
		return err
	}
	return requireText("startDate", in.StartDate)
}

func (in ExperienceInput) Fields() remote.Fields {
	end := in.EndDate
	if in.Current {
		end = ""
	}
	return remote.Fields{
		"title":       in.Title,
		"company":     in.Company,
		"location":    in.Location,
		"start_date":  in.StartDate,
		"end_date":    nullable(end),
		"current":     in.Current,
		"description": cloneStrings(in.Description),
	}
}

// ExperiencePatch is a partial experience update. Setting Current to true
// also clears the end date.
type ExperiencePatch struct {
	Title       *string   `json:"title,omitempty"`
	Company     *string   `json:"company,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartDate   *string   `json:"startDate,omitempty"`
	EndDate     *string   `json:"endDate,omitempty"`
	Current     *bool     `json:"current,omitempty"`
	Description *[]string `json:"description,omitempty"`
}

func (p ExperiencePatch) Validate() error {
	if err := requireTextPtr("title", p.Title); err != nil {
		return err
	}
	if err := requireTextPtr("company", p.Company); err != nil {
		return err
	}
	return requireTextPtr("startDate", p.StartDate)
}

// ValidateAgainst rejects an end date for an entry that stays current
// after the patch.
func (p ExperiencePatch) ValidateAgainst(rec Experience) error {
	current := rec.Current
	if p.Current != nil {
		current = *p.Current
	}
	if current && p.EndDate != nil && strings.TrimSpace(*p.EndDate) != "" && !p.clearsEnd() {
		return fmt.Errorf("%w: endDate cannot be set on a current position", ErrInvalidInput)
	}
	return nil
}

func (p ExperiencePatch) clearsEnd() bool {
	return p.Current != nil && *p.Current
}

func (p ExperiencePatch) Fields() remote.Fields {
	f := remote.Fields{}
	if p.Title != nil {
		f["title"] = *p.Title
	}
	if p.Company != nil {
		f["company"] = *p.Company
	}
	if p.Location != nil {
		f["location"] = *p.Location
	}
	if p.StartDate != nil {
		f["start_date"] = *p.StartDate
	}
	if p.EndDate != nil {
		f["end_date"] = nullable(*p.EndDate)
	}
	if p.Current != nil {
		f["current"] = *p.Current
	}
	if p.clearsEnd() {
		f["end_date"] = nil
	}
	if p.Description != nil {
		f["description"] = cloneStrings(*p.Description)
	}
	return f
}

// ApplyTo merges the patch over rec.
func (p ExperiencePatch) ApplyTo(rec Experience) Experience {
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.Company != nil {
		rec.Company = *p.Company
	}
	if p.Location != nil {
		rec.Location = *p.Location
	}
	if p.StartDate != nil {
		rec.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		rec.EndDate = *p.EndDate
	}
	if p.Current != nil {
		rec.Current = *p.Current
	}
	if p.clearsEnd() {
		rec.EndDate = ""
	}
	if p.Description != nil {
		rec.Description = cloneStrings(*p.Description)
	}
	return rec
}

// Skill is a named skill with a 0-100 proficiency level.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     int       `json:"level"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

// SkillInput is the payload for adding a skill.
type SkillInput struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Category string `json:"category"`
}

func (in SkillInput) Validate() error {
	if err := requireText("name", in.Name); err != nil {
		return err
	}
	if err := requireText("category", in.Category); err != nil {
		return err
	}
	return validLevel(in.Level)
}

func (in SkillInput) Fields() remote.Fields {
	return remote.Fields{
		"name":     in.Name,
		"level":    in.Level,
		"category": in.Category,
	}
}

// SkillPatch is a partial skill update.
type SkillPatch struct {
	Name     *string `json:"name,omitempty"`
	Level    *int    `json:"level,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (p SkillPatch) Validate() error {
	if err := requireTextPtr("name", p.Name); err != nil {
		return err
	}
	if err := requireTextPtr("category", p.Category); err != nil {
		return err
	}
	if p.Level != nil {
		return validLevel(*p.Level)
	}
	return nil
}

func (p SkillPatch) Fields() remote.Fields {
	f := remote.Fields{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.Level != nil {
		f["level"] = *p.Level
	}
	if p.Category != nil {
		f["category"] = *p.Category
	}
	return f
}

// ApplyTo merges the patch over rec.
func (p SkillPatch) ApplyTo(rec Skill) Skill {
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Level != nil {
		rec.Level = *p.Level
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	return rec
}
