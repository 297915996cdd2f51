package dispatch

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"docmost-mcp/internal/apperr"
	"docmost-mcp/internal/docmost"
)

// PageURL is the result of get_page_url.
type PageURL struct {
	URL       string `json:"url"`
	PageID    string `json:"pageId"`
	SlugID    string `json:"slugId"`
	SpaceSlug string `json:"spaceSlug"`
	TitleSlug string `json:"titleSlug"`
}

// pageURL builds <base>/s/<space slug>/p/<title slug>-<slug id>. The title
// segment is dropped when the title slugifies to nothing.
func (d *Dispatcher) pageURL(ctx context.Context, pageID string) (*PageURL, error) {
	if pageID == "" {
		return nil, apperr.Validation("pageId is required to build a page url")
	}
	page, err := d.backend.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	slugID := stringAt(page, "slugId")
	if slugID == "" {
		return nil, apperr.Resolution("page %s has no slugId", pageID)
	}
	spaceSlug := stringAt(page, "space", "slug")
	if spaceSlug == "" {
		if spaceID := docmost.SpaceRef(page); spaceID != "" {
			space, err := d.backend.GetSpace(ctx, spaceID)
			if err != nil {
				return nil, err
			}
			spaceSlug = stringAt(space, "slug")
		}
	}
	if spaceSlug == "" {
		return nil, apperr.Resolution("could not determine the space slug of page %s", pageID)
	}

	titleSlug := Slugify(stringAt(page, "title"))
	segment := slugID
	if titleSlug != "" {
		segment = titleSlug + "-" + slugID
	}
	return &PageURL{
		URL:       d.publicURL + "/s/" + url.PathEscape(spaceSlug) + "/p/" + url.PathEscape(segment),
		PageID:    pageID,
		SlugID:    slugID,
		SpaceSlug: spaceSlug,
		TitleSlug: titleSlug,
	}, nil
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, strips diacritics and collapses every run of
// other characters into a single hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}
