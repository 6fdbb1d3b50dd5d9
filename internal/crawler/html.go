package crawler

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var htmlWhitespace = regexp.MustCompile(`\s+`)

// extractHTML pulls the title, description, and main text out of an HTML
// document. Extraction degrades through a cascade: semantic containers
// first, then the densest paragraph cluster, finally the whole body.
func extractHTML(pageURL string, body []byte) *Content {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	content := &Content{
		URL:         pageURL,
		Title:       extractTitle(doc),
		Description: extractDescription(doc),
		RawHTML:     string(body),
	}
	content.Text = collapseWhitespace(extractBodyText(doc, body))
	return content
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractDescription(doc *goquery.Document) string {
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if desc = strings.TrimSpace(desc); desc != "" {
			return desc
		}
	}
	if og, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	first := strings.TrimSpace(doc.Find("p").First().Text())
	if len(first) > 200 {
		first = first[:200]
	}
	return first
}

// extractBodyText walks the container cascade: article, main, the densest
// paragraph cluster, then the whole body stripped of markup.
func extractBodyText(doc *goquery.Document, raw []byte) string {
	for _, selector := range []string{"article", "main"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			if text := strings.TrimSpace(sel.Text()); len(text) > minCascadeChars {
				return text
			}
		}
	}

	if text := densestParagraphCluster(doc); len(text) > minCascadeChars {
		return text
	}

	return wholeBodyText(raw)
}

// densestParagraphCluster groups paragraphs by their parent element and
// returns the text of the group with the most content. Paragraphs under 10
// characters (bylines, timestamps) are skipped without splitting the group.
func densestParagraphCluster(doc *goquery.Document) string {
	type cluster struct {
		parent *html.Node
		texts  []string
		size   int
	}

	var clusters []*cluster
	byParent := make(map[*html.Node]*cluster)

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) < 10 {
			return
		}
		parent := p.Parent()
		if parent.Length() == 0 {
			return
		}
		node := parent.Get(0)
		c, ok := byParent[node]
		if !ok {
			c = &cluster{parent: node}
			byParent[node] = c
			clusters = append(clusters, c)
		}
		c.texts = append(c.texts, text)
		c.size += len(text)
	})

	var best *cluster
	for _, c := range clusters {
		if best == nil || c.size > best.size {
			best = c
		}
	}
	if best == nil {
		return ""
	}
	return strings.Join(best.texts, " ")
}

// wholeBodyText is the last resort: concatenate every text node under body.
func wholeBodyText(raw []byte) string {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(htmlWhitespace.ReplaceAllString(s, " "))
}
