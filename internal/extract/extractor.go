// Package extract turns fetched detail pages into directory records using fixed CSS selectors.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/bbw-directory/internal/directory"
	"github.com/JakeFAU/bbw-directory/internal/normalize"
)

// Selectors holds the CSS selectors used to locate each field on a detail page.
type Selectors struct {
	Title        string
	WebsiteLink  string
	MainContent  string
	Section      string
	Contact      string
	ContactName  string
	ObfuscatedTo string
}

// DefaultSelectors returns the selectors matching the directory's detail page layout.
func DefaultSelectors() Selectors {
	return Selectors{
		Title:        "span.document-title__headline",
		WebsiteLink:  "a.document-title__link",
		MainContent:  ".bbw-detail__content-main",
		Section:      ".bbw-detail__section",
		Contact:      ".bbw-detail__contact",
		ContactName:  ".bbw-detail__contact-name",
		ObfuscatedTo: `a[href^="javascript:linkTo_UnCryptMailto"]`,
	}
}

// Extractor applies Selectors to a parsed document.
type Extractor struct {
	sel Selectors
}

// New returns an Extractor using sel; zero-valued selectors fall back to the defaults.
func New(sel Selectors) *Extractor {
	def := DefaultSelectors()
	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	fill(&sel.Title, def.Title)
	fill(&sel.WebsiteLink, def.WebsiteLink)
	fill(&sel.MainContent, def.MainContent)
	fill(&sel.Section, def.Section)
	fill(&sel.Contact, def.Contact)
	fill(&sel.ContactName, def.ContactName)
	fill(&sel.ObfuscatedTo, def.ObfuscatedTo)
	return &Extractor{sel: sel}
}

// ExtractBytes parses body as HTML and extracts a Record from it.
func (e *Extractor) ExtractBytes(body []byte) (directory.Record, error) {
	return e.ExtractHTML(bytes.NewReader(body))
}

// ExtractHTML parses r as HTML and extracts a Record from it.
// Only a parse failure is returned as an error.
func (e *Extractor) ExtractHTML(r io.Reader) (directory.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return directory.Record{}, fmt.Errorf("parse document: %w", err)
	}
	return e.Extract(doc), nil
}

// Extract builds a Record from doc. Missing elements degrade to sentinel values.
func (e *Extractor) Extract(doc *goquery.Document) directory.Record {
	rec := directory.NewRecord()

	if title := strings.TrimSpace(doc.Find(e.sel.Title).First().Text()); title != "" {
		rec.Title = title
	}
	if href, ok := doc.Find(e.sel.WebsiteLink).First().Attr("href"); ok && href != "" {
		rec.Website = href
	}

	main := doc.Find(e.sel.MainContent)
	rec.Address = normalize.SplitAddressBlock(e.addressBlock(main.First()))
	if carrier := strings.TrimSpace(main.Eq(1).Text()); carrier != "" {
		rec.Carrier = carrier
	}

	doc.Find(e.sel.Section).First().Find("ul").First().Find("li").Each(func(_ int, li *goquery.Selection) {
		rec.Specializations = append(rec.Specializations, strings.TrimSpace(li.Text()))
	})

	doc.Find(e.sel.Contact).Each(func(_ int, block *goquery.Selection) {
		rec.Contacts = append(rec.Contacts, e.contact(block))
	})

	return rec
}

func (e *Extractor) addressBlock(main *goquery.Selection) *string {
	p := main.Find("p").First()
	if p.Length() == 0 {
		return nil
	}
	inner, err := p.Html()
	if err != nil || inner == "" {
		return nil
	}
	return &inner
}

func (e *Extractor) contact(block *goquery.Selection) directory.Contact {
	c := directory.Contact{
		Name:  directory.ContactNameNotFound,
		Phone: directory.PhoneNotFound,
		Email: directory.EmailNotFound,
	}
	if name := strings.TrimSpace(block.Find(e.sel.ContactName).Text()); name != "" {
		c.Name = name
	}
	if paragraphs := block.Find("p"); paragraphs.Length() > 0 {
		c.Phone = normalize.CleanPhone(paragraphs.Text())
	}
	if email := normalize.CleanEmail(block.Find(e.sel.ObfuscatedTo).Text()); email != "" {
		c.Email = email
	}
	return c
}
