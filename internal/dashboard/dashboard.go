// Package dashboard summarises the registries for the admin landing page.
package dashboard

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/content"
	"portfolio-backend/internal/files"
	"portfolio-backend/internal/shared/server/respond"
)

const recentLimit = 3

// Summary is the admin dashboard payload.
type Summary struct {
	Counts         map[string]int     `json:"counts"`
	RecentProjects []content.Project  `json:"recentProjects"`
	RecentFiles    []files.FileRecord `json:"recentFiles"`
	IsUploading    bool               `json:"isUploading"`
}

// Service builds summaries from the cached registries. It never calls the
// remote store.
type Service struct {
	content *content.Registry
	files   *files.Registry
}

// NewService constructs a Service.
func NewService(c *content.Registry, f *files.Registry) *Service {
	return &Service{content: c, files: f}
}

// Summary reports collection counts, the three projects with the highest ids
// and the three newest files.
func (s *Service) Summary() Summary {
	counts := s.content.Counts()
	counts["files"] = s.files.Len()

	projects := s.content.Projects.All()
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].ID > projects[j].ID })

	return Summary{
		Counts:         counts,
		RecentProjects: head(projects, recentLimit),
		RecentFiles:    head(s.files.Files(), recentLimit),
		IsUploading:    s.files.IsUploading(),
	}
}

func head[T any](xs []T, n int) []T {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}

// RegisterRoutes attaches GET /dashboard to an admin-guarded group.
func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, s.Summary())
	})
}
