package recommend

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pabu-app/focusd/internal/storage"
)

// FallbackRecommendations returns a curated list of 20 resources for the
// project: ten general learning platforms seeded with the project title as a
// search query, plus ten topic-specific picks keyed on the title.
func FallbackRecommendations(projectTitle string) []storage.Recommendation {
	q := url.QueryEscape(projectTitle)

	base := []storage.Recommendation{
		{Title: projectTitle + " - Khan Academy", Domain: "khanacademy.org", URL: "https://www.khanacademy.org/search?page_search_query=" + q},
		{Title: projectTitle + " - Wikipedia", Domain: "wikipedia.org", URL: "https://en.wikipedia.org/wiki/Special:Search?search=" + q},
		{Title: projectTitle + " - Coursera Courses", Domain: "coursera.org", URL: "https://www.coursera.org/search?query=" + q},
		{Title: projectTitle + " - edX Courses", Domain: "edx.org", URL: "https://www.edx.org/search?q=" + q},
		{Title: projectTitle + " - YouTube Educational", Domain: "youtube.com", URL: "https://www.youtube.com/results?search_query=" + url.QueryEscape(projectTitle+" tutorial")},
		{Title: projectTitle + " - MIT OpenCourseWare", Domain: "ocw.mit.edu", URL: "https://ocw.mit.edu/search/?q=" + q},
		{Title: projectTitle + " - Stack Overflow", Domain: "stackoverflow.com", URL: "https://stackoverflow.com/search?q=" + q},
		{Title: projectTitle + " - Reddit Discussions", Domain: "reddit.com", URL: "https://www.reddit.com/search/?q=" + q},
		{Title: projectTitle + " - Udemy Courses", Domain: "udemy.com", URL: "https://www.udemy.com/courses/search/?q=" + q},
		{Title: projectTitle + " - FreeCodeCamp", Domain: "freecodecamp.org", URL: "https://www.freecodecamp.org/news/search/?query=" + q},
	}

	all := append(base, topicResources(projectTitle)...)
	if len(all) > 20 {
		all = all[:20]
	}
	return all
}

func topicResources(projectTitle string) []storage.Recommendation {
	titleLower := strings.ToLower(projectTitle)

	switch {
	case strings.Contains(titleLower, "space") || strings.Contains(titleLower, "astronomy"):
		return []storage.Recommendation{
			{Title: "NASA Educational Resources", Domain: "nasa.gov", URL: "https://www.nasa.gov/audience/foreducators/"},
			{Title: "Space Exploration - National Geographic", Domain: "nationalgeographic.com", URL: "https://www.nationalgeographic.com/science/space/"},
			{Title: "Interactive Solar System", Domain: "solarsystem.nasa.gov", URL: "https://solarsystem.nasa.gov/explore/"},
			{Title: "ESA Educational Resources", Domain: "esa.int", URL: "https://www.esa.int/Education"},
			{Title: "Astronomy Picture of the Day", Domain: "apod.nasa.gov", URL: "https://apod.nasa.gov/apod/"},
			{Title: "Stellarium - Virtual Planetarium", Domain: "stellarium.org", URL: "https://stellarium.org/"},
			{Title: "SpaceX Educational Content", Domain: "spacex.com", URL: "https://www.spacex.com/"},
			{Title: "Hubble Space Telescope", Domain: "hubblesite.org", URL: "https://hubblesite.org/"},
			{Title: "Cosmic Perspective Textbook", Domain: "pearson.com", URL: "https://www.pearson.com/us/higher-education/product/Bennett-Cosmic-Perspective-The-7th-Edition/9780321839558.html"},
			{Title: "Sky & Telescope Magazine", Domain: "skyandtelescope.org", URL: "https://skyandtelescope.org/"},
		}
	case strings.Contains(titleLower, "math"):
		return []storage.Recommendation{
			{Title: "Khan Academy Math", Domain: "khanacademy.org", URL: "https://www.khanacademy.org/math"},
			{Title: "Wolfram MathWorld", Domain: "mathworld.wolfram.com", URL: "https://mathworld.wolfram.com/"},
			{Title: "MIT OpenCourseWare Mathematics", Domain: "ocw.mit.edu", URL: "https://ocw.mit.edu/courses/mathematics/"},
			{Title: "Brilliant Math Courses", Domain: "brilliant.org", URL: "https://brilliant.org/courses/#math"},
			{Title: "Paul's Online Math Notes", Domain: "tutorial.math.lamar.edu", URL: "https://tutorial.math.lamar.edu/"},
			{Title: "GeoGebra Interactive Math", Domain: "geogebra.org", URL: "https://www.geogebra.org/"},
			{Title: "Desmos Graphing Calculator", Domain: "desmos.com", URL: "https://www.desmos.com/calculator"},
			{Title: "Art of Problem Solving", Domain: "artofproblemsolving.com", URL: "https://artofproblemsolving.com/"},
			{Title: "Professor Leonard YouTube", Domain: "youtube.com", URL: "https://www.youtube.com/channel/UCoHhuummRZaIVX7bD4t2czg"},
			{Title: "Mathway Problem Solver", Domain: "mathway.com", URL: "https://www.mathway.com/"},
		}
	case strings.Contains(titleLower, "science"):
		return []storage.Recommendation{
			{Title: "Khan Academy Science", Domain: "khanacademy.org", URL: "https://www.khanacademy.org/science"},
			{Title: "Crash Course Science", Domain: "youtube.com", URL: "https://www.youtube.com/user/crashcourse"},
			{Title: "Smithsonian Learning", Domain: "si.edu", URL: "https://www.si.edu/educators"},
			{Title: "National Science Foundation", Domain: "nsf.gov", URL: "https://www.nsf.gov/news/classroom/"},
			{Title: "SciShow YouTube Channel", Domain: "youtube.com", URL: "https://www.youtube.com/user/scishow"},
			{Title: "Nature Education", Domain: "nature.com", URL: "https://www.nature.com/scitable/"},
			{Title: "Scientific American", Domain: "scientificamerican.com", URL: "https://www.scientificamerican.com/"},
			{Title: "TED-Ed Science", Domain: "ed.ted.com", URL: "https://ed.ted.com/lessons?category=science-technology"},
			{Title: "Bill Nye the Science Guy", Domain: "billnye.com", URL: "https://www.billnye.com/"},
			{Title: "PhET Interactive Simulations", Domain: "phet.colorado.edu", URL: "https://phet.colorado.edu/"},
		}
	default:
		q := url.QueryEscape(projectTitle)
		return []storage.Recommendation{
			{Title: "TED Talks", Domain: "ted.com", URL: "https://www.ted.com/search?q=" + q},
			{Title: "Britannica Encyclopedia", Domain: "britannica.com", URL: "https://www.britannica.com/search?query=" + q},
			{Title: "Google Scholar", Domain: "scholar.google.com", URL: "https://scholar.google.com/scholar?q=" + q},
			{Title: "Library of Congress", Domain: "loc.gov", URL: "https://www.loc.gov/search/?q=" + q},
			{Title: "Open Culture", Domain: "openculture.com", URL: "https://www.openculture.com/?s=" + q},
			{Title: "Academic Earth", Domain: "academicearth.org", URL: "https://academicearth.org/search/?q=" + q},
			{Title: "iTunes U", Domain: "apple.com", URL: "https://www.apple.com/education/itunes-u/"},
			{Title: "Quizlet Study Sets", Domain: "quizlet.com", URL: "https://quizlet.com/search?query=" + q},
			{Title: "Study.com", Domain: "study.com", URL: fmt.Sprintf("https://study.com/search.html?q=%s", q)},
			{Title: "ResearchGate", Domain: "researchgate.net", URL: "https://www.researchgate.net/search?q=" + q},
		}
	}
}
