package purchases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/events"
)

// staticCatalog serves a fixed course list.
type staticCatalog struct {
	courses []catalog.Course
}

func (c staticCatalog) Course(id string) (catalog.Course, bool) {
	for _, course := range c.courses {
		if course.ID == id {
			return course, true
		}
	}
	return catalog.Course{}, false
}

func (c staticCatalog) AllCourses() []catalog.Course {
	return c.courses
}

func courseWithProgress(id string, price float64, modProgress ...int) catalog.Course {
	course := catalog.Course{ID: id, Title: id, Price: price}
	for _, p := range modProgress {
		m := catalog.Module{ID: id, Progress: p}
		// Section state consistent with the module percentage, two per module.
		m.Sections = []catalog.Section{
			{ID: "s1", Completed: p >= 50},
			{ID: "s2", Completed: p == 100},
		}
		course.Modules = append(course.Modules, m)
	}
	return course
}

func newTestService(t *testing.T, courses ...catalog.Course) (*Service, *events.MemoryLogger) {
	t.Helper()
	log := events.NewMemoryLogger()
	svc := NewService(ServiceConfig{
		Store:           NewMemoryStore(),
		Catalog:         staticCatalog{courses: courses},
		Events:          log,
		ProcessingDelay: time.Millisecond,
	})
	return svc, log
}

func TestPurchase(t *testing.T) {
	svc, log := newTestService(t, courseWithProgress("html", 49.99, 0))
	ctx := context.Background()

	receipt, err := svc.Purchase(ctx, "u1", "html")
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if receipt.OrderID == "" {
		t.Error("empty order ID")
	}
	if receipt.Price != 49.99 {
		t.Errorf("price = %g, want 49.99", receipt.Price)
	}

	owned, err := svc.HasPurchased(ctx, "u1", "html")
	if err != nil || !owned {
		t.Errorf("HasPurchased = (%v, %v), want owned", owned, err)
	}
	if got := log.ByType(events.TypeCoursePurchased); len(got) != 1 {
		t.Errorf("course_purchased events = %d, want 1", len(got))
	}
}

func TestPurchaseErrors(t *testing.T) {
	svc, _ := newTestService(t, courseWithProgress("html", 49.99, 0))
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, "u1", "missing"); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("unknown course error = %v, want ErrCourseNotFound", err)
	}

	if _, err := svc.Purchase(ctx, "u1", "html"); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	if _, err := svc.Purchase(ctx, "u1", "html"); !errors.Is(err, ErrAlreadyPurchased) {
		t.Errorf("duplicate purchase error = %v, want ErrAlreadyPurchased", err)
	}

	// Another user is unaffected.
	if _, err := svc.Purchase(ctx, "u2", "html"); err != nil {
		t.Errorf("other user purchase: %v", err)
	}
}

func TestPurchaseConcurrentGuard(t *testing.T) {
	log := events.NewMemoryLogger()
	svc := NewService(ServiceConfig{
		Store:           NewMemoryStore(),
		Catalog:         staticCatalog{courses: []catalog.Course{courseWithProgress("html", 10, 0)}},
		Events:          log,
		ProcessingDelay: 50 * time.Millisecond,
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(ctx, "u1", "html")
		}(i)
	}
	wg.Wait()

	var ok, inProgress int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrPurchaseInProgress):
			inProgress++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || inProgress != 1 {
		t.Errorf("outcomes = %d success / %d in-progress, want 1/1", ok, inProgress)
	}
}

func TestPurchaseCancelled(t *testing.T) {
	svc := NewService(ServiceConfig{
		Store:           NewMemoryStore(),
		Catalog:         staticCatalog{courses: []catalog.Course{courseWithProgress("html", 10, 0)}},
		ProcessingDelay: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Purchase(ctx, "u1", "html"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled purchase error = %v, want context.Canceled", err)
	}
	owned, _ := svc.HasPurchased(context.Background(), "u1", "html")
	if owned {
		t.Error("cancelled purchase must not be recorded")
	}
}

func TestDashboardPartition(t *testing.T) {
	inProg := courseWithProgress("css", 20, 50)           // owned, 50%
	inProgHigh := courseWithProgress("html", 20, 100, 50) // owned, 75%
	done := courseWithProgress("js", 20, 100)             // owned, 100%
	fresh := courseWithProgress("ts", 20, 0)              // owned, 0%
	unowned := courseWithProgress("go", 20, 0)

	svc, _ := newTestService(t, inProg, inProgHigh, done, fresh, unowned)
	ctx := context.Background()
	for _, id := range []string{"css", "html", "js", "ts"} {
		if _, err := svc.Purchase(ctx, "u1", id); err != nil {
			t.Fatalf("purchase %s: %v", id, err)
		}
	}

	d, err := svc.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(d.InProgress) != 2 {
		t.Fatalf("in progress = %d, want 2", len(d.InProgress))
	}
	// Sorted by descending progress.
	if d.InProgress[0].ID != "html" || d.InProgress[1].ID != "css" {
		t.Errorf("in-progress order = %s, %s", d.InProgress[0].ID, d.InProgress[1].ID)
	}
	if len(d.Completed) != 1 || d.Completed[0].ID != "js" {
		t.Errorf("completed = %+v, want js", d.Completed)
	}
	if len(d.Available) != 1 || d.Available[0].ID != "go" {
		t.Errorf("available = %+v, want go", d.Available)
	}

	// An owned course at 0% appears in no group but still counts in stats.
	if d.Stats.TotalCourses != 4 {
		t.Errorf("total courses = %d, want 4", d.Stats.TotalCourses)
	}
	if d.Stats.CoursesInProgress != 2 || d.Stats.CompletedCourses != 1 {
		t.Errorf("stats = %+v", d.Stats)
	}
	// css: 1 completed section, html: 3, js: 2, ts: 0.
	if want := 6 * minutesPerCompletedSection; d.Stats.TotalMinutesLearned != want {
		t.Errorf("minutes learned = %d, want %d", d.Stats.TotalMinutesLearned, want)
	}
}

func TestLogoutClearsPurchases(t *testing.T) {
	svc, _ := newTestService(t, courseWithProgress("html", 10, 0))
	ctx := context.Background()

	if err := svc.Login(ctx, "u1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Purchase(ctx, "u1", "html"); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	if err := svc.Logout(ctx, "u1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	owned, _ := svc.HasPurchased(ctx, "u1", "html")
	if owned {
		t.Error("purchases must be cleared on logout")
	}
}

func TestCourseProgress(t *testing.T) {
	if got := CourseProgress(courseWithProgress("c", 0, 100, 50, 0)); got != 50 {
		t.Errorf("course progress = %d, want 50", got)
	}
	if got := CourseProgress(catalog.Course{}); got != 0 {
		t.Errorf("empty course progress = %d, want 0", got)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.AddPurchase(ctx, "u1", "html"); err != nil {
		t.Fatal(err)
	}
	// Duplicate adds collapse.
	if err := store.AddPurchase(ctx, "u1", "html"); err != nil {
		t.Fatal(err)
	}
	ids, err := store.PurchasedCourses(ctx, "u1")
	if err != nil || len(ids) != 1 {
		t.Fatalf("purchases = %v (%v), want one entry", ids, err)
	}

	if err := store.SetLoggedIn(ctx, "u1", true); err != nil {
		t.Fatal(err)
	}
	in, err := store.IsLoggedIn(ctx, "u1")
	if err != nil || !in {
		t.Fatalf("IsLoggedIn = (%v, %v), want true", in, err)
	}

	if err := store.ClearUser(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	ids, _ = store.PurchasedCourses(ctx, "u1")
	if len(ids) != 0 {
		t.Errorf("purchases after clear = %v, want empty", ids)
	}
	in, _ = store.IsLoggedIn(ctx, "u1")
	if in {
		t.Error("logged-in flag survived clear")
	}
}
