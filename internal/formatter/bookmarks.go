package formatter

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	nethtml "golang.org/x/net/html"

	"github.com/desertthunder/linkreel/internal/models"
)

// Bookmark is a link read from a browser bookmark export.
type Bookmark struct {
	Title  string
	URL    string
	Folder string // Slash-separated folder path, empty at the top level
}

// ParseBookmarksHTML parses a Netscape bookmark file as written by browsers' "export bookmarks".
func ParseBookmarksHTML(r io.Reader) ([]Bookmark, error) {
	doc, err := nethtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bookmarks: %w", err)
	}

	var (
		bookmarks []Bookmark
		folders   []string
		opened    []bool // whether each <dl> pushed a folder
		heading   string
	)

	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			switch n.Data {
			case "h3":
				heading = strings.TrimSpace(textContent(n))
			case "dl":
				opened = append(opened, heading != "")
				if heading != "" {
					folders = append(folders, heading)
					heading = ""
				}
			case "a":
				b := Bookmark{Title: strings.TrimSpace(textContent(n)), Folder: strings.Join(folders, "/")}
				for _, attr := range n.Attr {
					if attr.Key == "href" {
						b.URL = strings.TrimSpace(attr.Val)
					}
				}
				if b.URL != "" {
					bookmarks = append(bookmarks, b)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == nethtml.ElementNode && n.Data == "dl" && len(opened) > 0 {
			if opened[len(opened)-1] {
				folders = folders[:len(folders)-1]
			}
			opened = opened[:len(opened)-1]
		}
	}

	walk(doc)
	return bookmarks, nil
}

// ExportToBookmarksHTML renders playlists as a Netscape bookmark file with one folder per playlist.
func ExportToBookmarksHTML(playlists []*models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	buf.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	buf.WriteString("<TITLE>Bookmarks</TITLE>\n<H1>Bookmarks</H1>\n<DL><p>\n")

	for _, p := range playlists {
		buf.WriteString(fmt.Sprintf("    <DT><H3 ADD_DATE=\"%d\">%s</H3>\n", p.CreatedAt.Unix(), html.EscapeString(p.Title)))
		buf.WriteString("    <DL><p>\n")
		for _, item := range p.SortedItems() {
			buf.WriteString(fmt.Sprintf("        <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
				html.EscapeString(item.URL), item.CreatedAt.Unix(), html.EscapeString(item.DisplayLabel())))
		}
		buf.WriteString("    </DL><p>\n")
	}

	buf.WriteString("</DL><p>\n")
	return buf.Bytes(), nil
}

func textContent(n *nethtml.Node) string {
	var sb strings.Builder
	var collect func(*nethtml.Node)
	collect = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
