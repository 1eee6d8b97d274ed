package session

import (
	"github.com/upskilleo/learning-engine/internal/catalog"
	"github.com/upskilleo/learning-engine/internal/grading"
)

const defaultCodeBuffer = "// Write your solution here"

// seedCode builds the editor starter template for a challenge: a comment
// header in the challenge's language plus the first line of the expected
// solution, orienting the learner without revealing the full answer.
func seedCode(km catalog.KeyMoment) string {
	first := grading.FirstLine(km.Solution)
	switch km.Type {
	case catalog.ContentHTML:
		return "<!-- Write your HTML solution here -->\n" + first
	case catalog.ContentCSS:
		return "/* Write your CSS solution here */\n" + first
	case catalog.ContentJavaScript, catalog.ContentTypeScript:
		return "// Write your JavaScript solution here\n" + first
	default:
		return defaultCodeBuffer
	}
}
