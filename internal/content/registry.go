package content

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote"
	"portfolio-backend/internal/shared/serial"
)

type (
	Projects    = Collection[Project, ProjectInput, ProjectPatch]
	Experiences = Collection[Experience, ExperienceInput, ExperiencePatch]
	Skills      = Collection[Skill, SkillInput, SkillPatch]
)

// ProjectKind phrases project notifications.
var ProjectKind = Kind[Project]{
	Name:    "projects",
	Entity:  "Project",
	Order:   remote.Query{OrderBy: "created_at"},
	ID:      func(p Project) string { return p.ID },
	Added:   func(p Project) string { return fmt.Sprintf("%s has been added to your portfolio.", p.Title) },
	Deleted: func(p Project) string { return fmt.Sprintf("%s has been deleted.", p.Title) },
}

// ExperienceKind phrases experience notifications.
var ExperienceKind = Kind[Experience]{
	Name:   "experience",
	Entity: "Experience",
	Order:  remote.Query{OrderBy: "created_at"},
	ID:     func(e Experience) string { return e.ID },
	Added: func(e Experience) string {
		return fmt.Sprintf("%s at %s has been added.", e.Title, e.Company)
	},
	Deleted: func(e Experience) string {
		return fmt.Sprintf("%s at %s has been deleted.", e.Title, e.Company)
	},
}

// SkillKind phrases skill notifications.
var SkillKind = Kind[Skill]{
	Name:    "skills",
	Entity:  "Skill",
	Order:   remote.Query{OrderBy: "created_at"},
	ID:      func(s Skill) string { return s.ID },
	Added:   func(s Skill) string { return fmt.Sprintf("%s has been added to your skills.", s.Name) },
	Deleted: func(s Skill) string { return fmt.Sprintf("%s has been deleted from your skills.", s.Name) },
}

// Tables are the remote collections the registry syncs with.
type Tables struct {
	Projects   remote.Table[Project]
	Experience remote.Table[Experience]
	Skills     remote.Table[Skill]
}

// Registry holds the three content collections.
type Registry struct {
	Projects   *Projects
	Experience *Experiences
	Skills     *Skills
}

// HookFactory returns the change hook for a named collection.
type HookFactory func(collection string) ChangeHook

// NewRegistry wires the three collections to their tables. hooks may be nil.
func NewRegistry(tables Tables, notifier notify.Notifier, hooks HookFactory) *Registry {
	q := serial.New()
	opts := func(name string) []Option {
		o := []Option{WithQueue(q)}
		if hooks != nil {
			o = append(o, WithChangeHook(hooks(name)))
		}
		return o
	}
	return &Registry{
		Projects:   NewCollection[Project, ProjectInput, ProjectPatch](ProjectKind, tables.Projects, notifier, opts(ProjectKind.Name)...),
		Experience: NewCollection[Experience, ExperienceInput, ExperiencePatch](ExperienceKind, tables.Experience, notifier, opts(ExperienceKind.Name)...),
		Skills:     NewCollection[Skill, SkillInput, SkillPatch](SkillKind, tables.Skills, notifier, opts(SkillKind.Name)...),
	}
}

// FetchAll loads the three collections concurrently. Each collection keeps
// its previous cache on failure and one failure does not cancel the others,
// so the group carries no context. Every failure is joined into the result.
func (r *Registry) FetchAll(ctx context.Context) error {
	fetches := []func(context.Context) error{
		r.Projects.FetchAll,
		r.Experience.FetchAll,
		r.Skills.FetchAll,
	}
	errs := make([]error, len(fetches))
	var g errgroup.Group
	for i, fetch := range fetches {
		g.Go(func() error {
			errs[i] = fetch(ctx)
			return errs[i]
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Join(errs...)
	}
	return nil
}

// Fetch reloads one collection by name.
func (r *Registry) Fetch(ctx context.Context, collection string) error {
	switch collection {
	case ProjectKind.Name:
		return r.Projects.FetchAll(ctx)
	case ExperienceKind.Name:
		return r.Experience.FetchAll(ctx)
	case SkillKind.Name:
		return r.Skills.FetchAll(ctx)
	default:
		return fmt.Errorf("unknown collection %q", collection)
	}
}

// Counts reports the cached size of each collection.
func (r *Registry) Counts() map[string]int {
	return map[string]int{
		ProjectKind.Name:    r.Projects.Len(),
		ExperienceKind.Name: r.Experience.Len(),
		SkillKind.Name:      r.Skills.Len(),
	}
}
