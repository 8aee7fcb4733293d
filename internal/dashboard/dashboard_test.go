package dashboard

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/content"
	"portfolio-backend/internal/files"
	"portfolio-backend/internal/remote/memory"
)

func TestSummary(t *testing.T) {
	ctx := context.Background()
	reg := content.NewRegistry(content.Tables{
		Projects:   memory.NewTable(content.ProjectSchema),
		Experience: memory.NewTable(content.ExperienceSchema),
		Skills:     memory.NewTable(content.SkillSchema),
	}, nil, nil)

	var ids []string
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		p, err := reg.Projects.Add(ctx, content.ProjectInput{Title: title, Description: "d"})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := reg.Skills.Add(ctx, content.SkillInput{Name: "Go", Category: "Languages", Level: 90})
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	table := memory.NewTable(files.Schema).WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	fr := files.NewRegistry(table, memory.NewBlobStore("https://cdn.example", "project_files"), nil)
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		_, err := fr.Upload(ctx, files.Upload{Name: name, Size: 1, Type: "text/plain", Body: strings.NewReader("x")})
		require.NoError(t, err)
	}

	s := NewService(reg, fr).Summary()

	assert.Equal(t, 4, s.Counts["projects"])
	assert.Equal(t, 0, s.Counts["experience"])
	assert.Equal(t, 1, s.Counts["skills"])
	assert.Equal(t, 4, s.Counts["files"])

	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	require.Len(t, s.RecentProjects, 3)
	for i, p := range s.RecentProjects {
		assert.Equal(t, ids[i], p.ID)
	}

	require.Len(t, s.RecentFiles, 3)
	assert.Equal(t, "d.txt", s.RecentFiles[0].Name)
	assert.Equal(t, "b.txt", s.RecentFiles[2].Name)
	assert.False(t, s.IsUploading)
}
