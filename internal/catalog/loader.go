// Package catalog loads and serves course content from YAML files.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads and caches course content from the filesystem.
type Loader struct {
	rootDir string
	courses map[string]Course
	mu      sync.RWMutex
}

// NewLoader creates a new catalog loader and loads all content.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir: rootDir,
		courses: make(map[string]Course),
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	slog.Info("catalog loaded", "courses", len(l.courses))
	return l, nil
}

// Course returns a course by ID.
func (l *Loader) Course(id string) (Course, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.courses[id]
	return c, ok
}

// AllCourses returns all loaded courses ordered by ID.
func (l *Loader) AllCourses() []Course {
	l.mu.RLock()
	defer l.mu.RUnlock()
	courses := make([]Course, 0, len(l.courses))
	for _, c := range l.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return l.loadCourse(path)
		}
		return nil
	})
}

func (l *Loader) loadCourse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var course Course
	if err := yaml.Unmarshal(data, &course); err != nil {
		slog.Warn("skipping invalid course YAML", "path", path, "error", err)
		return nil
	}

	if course.ID == "" {
		return nil // Not a course file
	}

	normalize(&course)

	l.mu.Lock()
	l.courses[course.ID] = course
	l.mu.Unlock()

	return nil
}

// normalize fills in the pieces content authors are allowed to omit: fallback
// media, stock key moments for a declared track, derived sections, and counts.
func normalize(course *Course) {
	for mi := range course.Modules {
		m := &course.Modules[mi]
		for li := range m.Lessons {
			lesson := &m.Lessons[li]
			if lesson.VideoURL == "" {
				lesson.VideoURL = DefaultVideoURL
			}
			if len(lesson.KeyMoments) == 0 && lesson.Track != "" && lesson.Track.Valid() {
				lesson.KeyMoments = DefaultKeyMoments(lesson.Track)
			}
		}
		if len(m.Sections) == 0 {
			m.Sections = make([]Section, len(m.Lessons))
			for li, lesson := range m.Lessons {
				m.Sections[li] = Section{
					ID:        lesson.ID,
					Title:     lesson.Title,
					Duration:  lesson.Duration,
					Completed: lesson.Completed,
					Locked:    lesson.Locked,
				}
			}
		}
		if m.LessonCount == 0 {
			m.LessonCount = len(m.Lessons)
		}
	}
}
