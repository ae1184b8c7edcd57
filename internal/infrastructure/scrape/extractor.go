package scrape

import (
	"bufio"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// MinHeadlineLength is the shortest cleaned headline kept, in characters
	MinHeadlineLength = 24
	// MaxHeadlines caps the headlines taken from one document
	MaxHeadlines = 12
)

var (
	atxHeadingRegex    = regexp.MustCompile(`^ {0,3}(#{1,3})[ \t]+(.+?)(?:[ \t]+#+)?[ \t]*$`)
	setextH1Regex      = regexp.MustCompile(`^ {0,3}=+[ \t]*$`)
	setextH2Regex      = regexp.MustCompile(`^ {0,3}-+[ \t]*$`)
	markdownImageRegex = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	markdownLinkRegex  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisRegex      = regexp.MustCompile("[*_`]+")
)

// ExtractHeadlines pulls level 1-3 headings out of an HTML or markdown
// document. Markup is stripped, whitespace collapsed, fragments shorter than
// MinHeadlineLength dropped, case-insensitive duplicates removed, and the
// result capped at MaxHeadlines. It never fails; no headings yields nil.
func ExtractHeadlines(document string) []string {
	candidates := htmlHeadings(document)
	if len(candidates) == 0 {
		candidates = markdownHeadings(document)
	}
	return FilterHeadlines(candidates)
}

// FilterHeadlines applies the length, dedupe and cap rules to raw fragments
func FilterHeadlines(fragments []string) []string {
	var cleaned []string
	seen := make(map[string]bool)
	for _, fragment := range fragments {
		text := collapseWhitespace(fragment)
		if utf8.RuneCountInString(text) < MinHeadlineLength {
			continue
		}
		key := strings.ToLower(text)
		if seen[key] {
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, text)
		if len(cleaned) == MaxHeadlines {
			break
		}
	}
	return cleaned
}

// htmlHeadings returns the text of h1-h3 elements in document order
func htmlHeadings(document string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil
	}

	var headings []string
	doc.Find("h1,h2,h3").Each(func(i int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			headings = append(headings, nodeText(node))
		}
	})
	return headings
}

// nodeText concatenates text nodes, treating every element boundary as a space
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// markdownHeadings returns ATX and setext headings of levels 1-3
func markdownHeadings(document string) []string {
	var headings []string
	var previous string

	scanner := bufio.NewScanner(strings.NewReader(document))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case atxHeadingRegex.MatchString(line):
			m := atxHeadingRegex.FindStringSubmatch(line)
			headings = append(headings, stripMarkdown(m[2]))
			previous = ""
			continue
		case strings.TrimSpace(previous) != "" && (setextH1Regex.MatchString(line) || setextH2Regex.MatchString(line)):
			headings = append(headings, stripMarkdown(previous))
			previous = ""
			continue
		}
		previous = line
	}
	return headings
}

func stripMarkdown(s string) string {
	s = markdownImageRegex.ReplaceAllString(s, " ")
	s = markdownLinkRegex.ReplaceAllString(s, "$1")
	s = emphasisRegex.ReplaceAllString(s, "")
	return s
}

func collapseWhitespace(s string) string {
	// strings.Fields also splits on non-breaking spaces
	return strings.Join(strings.Fields(s), " ")
}

// nodeTextFromMarkup strips tags that feeds sometimes embed in titles
func nodeTextFromMarkup(s string) string {
	nodes, err := html.ParseFragment(strings.NewReader(s), &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div})
	if err != nil {
		return s
	}
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(nodeText(n))
	}
	return b.String()
}
