package purchases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/events"
	"github.com/upskilleo/learning-engine/internal/progress"
)

const (
	defaultProcessingDelay = 1500 * time.Millisecond
	// minutesPerCompletedSection sizes the "minutes learned" stat; there is
	// no real watch-time tracking behind it.
	minutesPerCompletedSection = 10
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAlreadyPurchased   = errors.New("course already purchased")
	ErrPurchaseInProgress = errors.New("purchase already in progress")
)

// Notifier surfaces purchase status messages; satisfied by the session
// package's notifier implementations.
type Notifier interface {
	Success(message, detail string)
	Info(message, detail string)
}

// Catalog is the read-only course source the service consults.
type Catalog interface {
	Course(id string) (catalog.Course, bool)
	AllCourses() []catalog.Course
}

// ServiceConfig holds dependencies for the purchase service.
type ServiceConfig struct {
	Store           Store
	Catalog         Catalog
	Events          events.Logger
	Notifier        Notifier
	ProcessingDelay time.Duration // simulated payment delay, default 1.5s
}

// Service runs the simulated purchase flow and builds the learning dashboard.
type Service struct {
	store    Store
	catalog  Catalog
	events   events.Logger
	notifier Notifier
	delay    time.Duration

	mu      sync.Mutex
	pending map[string]bool
}

// Receipt is the outcome of a successful purchase.
type Receipt struct {
	OrderID  string  `json:"order_id"`
	CourseID string  `json:"course_id"`
	Price    float64 `json:"price"`
}

// Stats summarizes a user's learning activity.
type Stats struct {
	TotalMinutesLearned int `json:"total_minutes_learned"`
	CoursesInProgress   int `json:"courses_in_progress"`
	CompletedCourses    int `json:"completed_courses"`
	TotalCourses        int `json:"total_courses"`
}

// Dashboard partitions the catalog by the user's ownership and progress.
type Dashboard struct {
	InProgress []catalog.Course `json:"in_progress"`
	Completed  []catalog.Course `json:"completed"`
	Available  []catalog.Course `json:"available"`
	Stats      Stats            `json:"stats"`
}

// NewService creates a purchase service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Events
	if logger == nil {
		logger = events.NopLogger{}
	}
	delay := cfg.ProcessingDelay
	if delay == 0 {
		delay = defaultProcessingDelay
	}
	return &Service{
		store:    cfg.Store,
		catalog:  cfg.Catalog,
		events:   logger,
		notifier: cfg.Notifier,
		delay:    delay,
		pending:  make(map[string]bool),
	}
}

// Purchase runs the simulated payment flow: a fixed processing delay, then
// the course is recorded against the user. Duplicate purchases and concurrent
// attempts for the same course are rejected.
func (s *Service) Purchase(ctx context.Context, userID, courseID string) (Receipt, error) {
	course, ok := s.catalog.Course(courseID)
	if !ok {
		return Receipt{}, ErrCourseNotFound
	}

	owned, err := s.HasPurchased(ctx, userID, courseID)
	if err != nil {
		return Receipt{}, err
	}
	if owned {
		return Receipt{}, ErrAlreadyPurchased
	}

	key := userID + "|" + courseID
	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		return Receipt{}, ErrPurchaseInProgress
	}
	s.pending[key] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, key)
		s.mu.Unlock()
	}()

	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	}

	if err := s.store.AddPurchase(ctx, userID, courseID); err != nil {
		return Receipt{}, fmt.Errorf("record purchase: %w", err)
	}

	receipt := Receipt{
		OrderID:  uuid.NewString(),
		CourseID: courseID,
		Price:    course.Price,
	}

	if err := s.events.LogEvent(events.Event{
		UserID:    userID,
		CourseID:  courseID,
		EventType: events.TypeCoursePurchased,
		Data:      map[string]any{"order_id": receipt.OrderID, "price": course.Price},
	}); err != nil {
		// Best effort, the purchase itself already succeeded.
		slog.Warn("failed to log purchase event", "course_id", courseID, "error", err)
	}
	if s.notifier != nil {
		s.notifier.Success("Course purchased successfully!", "You now have full access to this course")
	}
	return receipt, nil
}

// HasPurchased reports whether the user owns the course.
func (s *Service) HasPurchased(ctx context.Context, userID, courseID string) (bool, error) {
	ids, err := s.store.PurchasedCourses(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load purchases: %w", err)
	}
	for _, id := range ids {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

// Login marks the user's session flag in the store.
func (s *Service) Login(ctx context.Context, userID string) error {
	return s.store.SetLoggedIn(ctx, userID, true)
}

// Logout clears everything held for the user, purchases included.
func (s *Service) Logout(ctx context.Context, userID string) error {
	return s.store.ClearUser(ctx, userID)
}

// Dashboard builds the user's learning overview: owned courses partitioned by
// progress plus summary stats. Courses are sorted by descending progress
// within the in-progress group.
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	ownedIDs, err := s.store.PurchasedCourses(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load purchases: %w", err)
	}
	owned := make(map[string]bool, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = true
	}

	var d Dashboard
	minutes := 0
	for _, course := range s.catalog.AllCourses() {
		p := CourseProgress(course)
		switch {
		case owned[course.ID] && p > 0 && p < 100:
			d.InProgress = append(d.InProgress, course)
		case owned[course.ID] && p == 100:
			d.Completed = append(d.Completed, course)
		case !owned[course.ID]:
			d.Available = append(d.Available, course)
		}
		if owned[course.ID] {
			minutes += completedSections(course) * minutesPerCompletedSection
		}
	}

	sort.Slice(d.InProgress, func(i, j int) bool {
		return CourseProgress(d.InProgress[i]) > CourseProgress(d.InProgress[j])
	})

	d.Stats = Stats{
		TotalMinutesLearned: minutes,
		CoursesInProgress:   len(d.InProgress),
		CompletedCourses:    len(d.Completed),
		TotalCourses:        len(ownedIDs),
	}
	return d, nil
}

// CourseProgress is the course-level percentage: the average of the stored
// per-module progress fields, rounded.
func CourseProgress(c catalog.Course) int {
	return int(math.Round(progress.OverallProgress(c.Modules)))
}

func completedSections(c catalog.Course) int {
	n := 0
	for _, m := range c.Modules {
		for _, s := range m.Sections {
			if s.Completed {
				n++
			}
		}
	}
	return n
}
