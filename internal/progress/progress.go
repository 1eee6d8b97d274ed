// Package progress implements the completion, unlock, and percentage model for
// course modules. All functions mutate the passed-in module collection; callers
// that need isolation clone first (catalog.Course.CloneModules).
package progress

import (
	"math"

	"github.com/upskilleo/learning-engine/internal/catalog"
)

// CompleteLesson marks the lesson at (moduleIndex, lessonIndex) completed and
// unlocks the next lesson in sequence: the following lesson of the same module,
// or the first lesson of the next module when the completed lesson was the last
// of its module. Out-of-range indices and already-completed lessons are no-ops.
func CompleteLesson(modules []catalog.Module, moduleIndex, lessonIndex int) {
	if moduleIndex < 0 || moduleIndex >= len(modules) {
		return
	}
	m := &modules[moduleIndex]
	if lessonIndex < 0 || lessonIndex >= len(m.Lessons) {
		return
	}
	if m.Lessons[lessonIndex].Completed {
		return
	}

	m.Lessons[lessonIndex].Completed = true
	if lessonIndex < len(m.Sections) {
		m.Sections[lessonIndex].Completed = true
	}

	switch {
	case lessonIndex < len(m.Lessons)-1:
		unlockLesson(m, lessonIndex+1)
	case moduleIndex < len(modules)-1:
		next := &modules[moduleIndex+1]
		next.Locked = false
		if len(next.Lessons) > 0 {
			unlockLesson(next, 0)
		}
	}
}

// MarkSectionCompleted sets the completed flag on the lesson's section only.
// Skipping a challenge counts as progress, but the lesson itself completes
// (and the unlock chain advances) only when the video finishes.
func MarkSectionCompleted(modules []catalog.Module, moduleIndex, lessonIndex int) {
	if moduleIndex < 0 || moduleIndex >= len(modules) {
		return
	}
	m := &modules[moduleIndex]
	if lessonIndex < 0 || lessonIndex >= len(m.Sections) {
		return
	}
	m.Sections[lessonIndex].Completed = true
}

func unlockLesson(m *catalog.Module, lessonIndex int) {
	m.Lessons[lessonIndex].Locked = false
	if lessonIndex < len(m.Sections) {
		m.Sections[lessonIndex].Locked = false
	}
}

// ModuleProgress returns the module's completion percentage, rounded, computed
// from its sections. A module with no sections reports 0 rather than dividing
// by zero.
func ModuleProgress(m catalog.Module) int {
	if len(m.Sections) == 0 {
		return 0
	}
	completed := 0
	for _, s := range m.Sections {
		if s.Completed {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(m.Sections))))
}

// OverallProgress averages the stored per-module Progress fields. This mirrors
// the course-overview behavior; call Recompute first if lessons were mutated
// since the fields were last refreshed.
func OverallProgress(modules []catalog.Module) float64 {
	if len(modules) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range modules {
		sum += float64(m.Progress)
	}
	return sum / float64(len(modules))
}

// OverallLessonProgress recomputes the overall percentage from individual
// lesson completion across all modules. Used by the lesson session view.
func OverallLessonProgress(modules []catalog.Module) float64 {
	total, completed := 0, 0
	for _, m := range modules {
		for _, l := range m.Lessons {
			total++
			if l.Completed {
				completed++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

// Recompute refreshes each module's stored Progress and Completed flags from
// its sections so the stored fields and the section state agree.
func Recompute(modules []catalog.Module) {
	for i := range modules {
		modules[i].Progress = ModuleProgress(modules[i])
		modules[i].Completed = len(modules[i].Sections) > 0 && modules[i].Progress == 100
	}
}

// NormalizeLocks enforces the lock invariant across the whole sequence: the
// very first lesson is always unlocked, and any lesson directly after a
// completed one is unlocked.
func NormalizeLocks(modules []catalog.Module) {
	prevCompleted := true // nothing precedes the first lesson
	for mi := range modules {
		m := &modules[mi]
		for li := range m.Lessons {
			if prevCompleted {
				unlockLesson(m, li)
			}
			prevCompleted = m.Lessons[li].Completed
		}
	}
}

// NextLesson returns the indices of the lesson following (moduleIndex,
// lessonIndex) in sequence, or ok=false when it was the last lesson overall.
func NextLesson(modules []catalog.Module, moduleIndex, lessonIndex int) (int, int, bool) {
	if moduleIndex < 0 || moduleIndex >= len(modules) {
		return 0, 0, false
	}
	if lessonIndex < len(modules[moduleIndex].Lessons)-1 {
		return moduleIndex, lessonIndex + 1, true
	}
	if moduleIndex < len(modules)-1 && len(modules[moduleIndex+1].Lessons) > 0 {
		return moduleIndex + 1, 0, true
	}
	return 0, 0, false
}
