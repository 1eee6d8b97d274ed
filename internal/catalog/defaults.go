package catalog

// DefaultVideoURL is played for lessons that do not declare their own media.
const DefaultVideoURL = "http://commondatastorage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"

// DefaultKeyMoments returns the stock challenges for a lesson track. Lessons
// that declare a track but no explicit key moments fall back to these.
func DefaultKeyMoments(track ContentType) []KeyMoment {
	switch track {
	case ContentHTML:
		return []KeyMoment{
			{
				ID:            "html-1",
				TimeInSeconds: 15,
				Challenge:     "Create a semantic HTML structure for a blog post with a header, main content, and footer.",
				Hints: []string{
					"Use appropriate semantic HTML5 elements like <header>, <main>, <article>, and <footer>",
					"Include a title, author information, and publication date in the header",
				},
				Solution: "<header>\n  <h1>My Blog Post</h1>\n  <div class=\"meta\">\n    <span class=\"author\">By John Doe</span>\n    <time datetime=\"2024-03-20\">March 20, 2024</time>\n  </div>\n</header>\n<main>\n  <article>\n    <p>This is the main content of my blog post...</p>\n  </article>\n</main>\n<footer>\n  <p>© 2024 My Blog. All rights reserved.</p>\n</footer>",
				Type:     ContentHTML,
			},
			{
				ID:            "html-2",
				TimeInSeconds: 45,
				Challenge:     "Create a responsive navigation menu with dropdown items.",
				Hints: []string{
					"Use <nav> element with unordered list",
					"Implement nested lists for dropdown items",
					"Add appropriate ARIA attributes for accessibility",
				},
				Solution: "<nav aria-label=\"Main navigation\">\n  <ul>\n    <li><a href=\"/\">Home</a></li>\n    <li><a href=\"/products\">Products</a></li>\n    <li><a href=\"/about\">About</a></li>\n    <li><a href=\"/contact\">Contact</a></li>\n  </ul>\n</nav>",
				Type:     ContentHTML,
			},
		}
	case ContentCSS:
		return []KeyMoment{
			{
				ID:            "css-1",
				TimeInSeconds: 15,
				Challenge:     "Create a responsive grid layout for a photo gallery.",
				Hints: []string{
					"Use CSS Grid for the layout",
					"Implement responsive breakpoints using media queries",
					"Add hover effects for better user interaction",
				},
				Solution: ".gallery {\n  display: grid;\n  grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));\n  gap: 1rem;\n  padding: 1rem;\n}",
				Type:     ContentCSS,
			},
			{
				ID:            "css-2",
				TimeInSeconds: 45,
				Challenge:     "Create a responsive card component with hover effects.",
				Hints: []string{
					"Use flexbox for the card layout",
					"Implement smooth transitions for hover effects",
					"Add a subtle shadow effect",
				},
				Solution: ".card {\n  display: flex;\n  flex-direction: column;\n  background: white;\n  border-radius: 8px;\n  overflow: hidden;\n  box-shadow: 0 2px 4px rgba(0,0,0,0.1);\n  transition: transform 0.3s ease, box-shadow 0.3s ease;\n}",
				Type:     ContentCSS,
			},
		}
	case ContentJavaScript, ContentTypeScript:
		return []KeyMoment{
			{
				ID:            "js-1",
				TimeInSeconds: 15,
				Challenge:     "Create a function to handle form validation for an email input.",
				Hints: []string{
					"Use regular expressions to validate email format",
					"Return appropriate error messages for different validation cases",
					"Handle both required field and format validation",
				},
				Solution: "function validateEmail(email) {\n  if (!email) {\n    return { isValid: false, message: 'Email is required' };\n  }\n  const emailRegex = /^[^\\s@]+@[^\\s@]+\\.[^\\s@]+$/;\n  if (!emailRegex.test(email)) {\n    return { isValid: false, message: 'Please enter a valid email address' };\n  }\n  return { isValid: true, message: 'Email is valid' };\n}",
				Type:     ContentJavaScript,
			},
			{
				ID:            "js-2",
				TimeInSeconds: 45,
				Challenge:     "Create a function to fetch and display data from an API.",
				Hints: []string{
					"Use async/await for handling the API request",
					"Implement error handling",
					"Add loading state management",
				},
				Solution: "async function fetchUserData(userId) {\n  const response = await fetch(`https://api.example.com/users/${userId}`);\n  if (!response.ok) {\n    throw new Error('Failed to fetch user data');\n  }\n  return response.json();\n}",
				Type:     ContentJavaScript,
			},
		}
	default:
		return []KeyMoment{
			{
				ID:            "default-1",
				TimeInSeconds: 15,
				Challenge:     "Try implementing a function that checks if a number is even or odd.",
				Hints:         []string{"Use the modulo operator (%) to check if a number is divisible by 2."},
				Solution:      "function isEven(num) {\n  return num % 2 === 0;\n}",
				Type:          ContentDefault,
			},
			{
				ID:            "default-2",
				TimeInSeconds: 45,
				Challenge:     "Write a function to capitalize the first letter of a string.",
				Hints:         []string{"Use the string methods charAt(), slice(), and toUpperCase()."},
				Solution:      "function capitalize(str) {\n  return str.charAt(0).toUpperCase() + str.slice(1);\n}",
				Type:          ContentDefault,
			},
		}
	}
}
