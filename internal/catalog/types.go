package catalog

// ContentType tags a lesson track or key moment with the kind of code it teaches.
type ContentType string

const (
	ContentHTML       ContentType = "html"
	ContentCSS        ContentType = "css"
	ContentJavaScript ContentType = "javascript"
	ContentTypeScript ContentType = "typescript"
	ContentDefault    ContentType = "default"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentHTML, ContentCSS, ContentJavaScript, ContentTypeScript, ContentDefault:
		return true
	}
	return false
}

// KeyMoment is a timestamped marker in a lesson video that triggers a coding challenge.
type KeyMoment struct {
	ID            string      `yaml:"id"`
	TimeInSeconds float64     `yaml:"time_in_seconds"`
	Challenge     string      `yaml:"challenge"`
	Hints         []string    `yaml:"hints"`
	Solution      string      `yaml:"solution"`
	Type          ContentType `yaml:"type"`
}

// Lesson is a single unit of instructional content with optional video and challenges.
type Lesson struct {
	ID         string      `yaml:"id"`
	Title      string      `yaml:"title"`
	Duration   string      `yaml:"duration"`
	Completed  bool        `yaml:"completed"`
	Locked     bool        `yaml:"locked"`
	VideoURL   string      `yaml:"video_url"`
	Track      ContentType `yaml:"track"`
	KeyMoments []KeyMoment `yaml:"key_moments"`
}

// Section is a lightweight lesson reference used for curriculum overviews and
// progress computation.
type Section struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Duration  string `yaml:"duration"`
	Completed bool   `yaml:"completed"`
	Locked    bool   `yaml:"locked"`
}

// Module is a thematic grouping of lessons within a course.
type Module struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Duration    string   `yaml:"duration"`
	LessonCount int      `yaml:"lesson_count"`
	Completed   bool     `yaml:"completed"`
	Locked      bool     `yaml:"locked"`
	Progress    int      `yaml:"progress"`
	Badge       string   `yaml:"badge,omitempty"`
	Track       string   `yaml:"track,omitempty"`
	Topics      []string `yaml:"topics,omitempty"`
	Sections    []Section `yaml:"sections"`
	Lessons     []Lesson  `yaml:"lessons"`
}

// Course is a purchasable unit of the catalog.
type Course struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Price       float64  `yaml:"price"`
	Modules     []Module `yaml:"modules"`
}

// CloneModules returns a deep copy of the course's modules. Sessions mutate
// completion and lock state, so each one works on its own copy.
func (c Course) CloneModules() []Module {
	modules := make([]Module, len(c.Modules))
	for i, m := range c.Modules {
		modules[i] = m
		modules[i].Topics = append([]string(nil), m.Topics...)
		modules[i].Sections = append([]Section(nil), m.Sections...)
		modules[i].Lessons = make([]Lesson, len(m.Lessons))
		for j, l := range m.Lessons {
			modules[i].Lessons[j] = l
			modules[i].Lessons[j].KeyMoments = append([]KeyMoment(nil), l.KeyMoments...)
		}
	}
	return modules
}
