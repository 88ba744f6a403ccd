package extract_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/bbw-directory/internal/directory"
	"github.com/JakeFAU/bbw-directory/internal/extract"
)

func TestExtractFullPage(t *testing.T) {
	t.Parallel()

	body, err := os.ReadFile(filepath.Join("testdata", "detail.html"))
	require.NoError(t, err)

	rec, err := extract.New(extract.Selectors{}).ExtractBytes(body)
	require.NoError(t, err)

	assert.Equal(t, "Berufsbildungswerk Am See", rec.Title)
	assert.Equal(t, "https://www.bbw-am-see.example", rec.Website)
	assert.Equal(t, directory.PostalAddress{
		Street: "Seestraße 12",
		City:   "12345 Seestadt",
		Region: "Brandenburg",
	}, rec.Address)
	assert.Equal(t, "Stiftung Am See gGmbH", rec.Carrier)
	assert.Equal(t, []string{"Lernbehinderung", "Körperbehinderung", "Hörbehinderung"}, rec.Specializations)
	require.Len(t, rec.Contacts, 2)
	assert.Equal(t, directory.Contact{
		Name:  "Erika Mustermann",
		Phone: "+49030123456",
		Email: "info@bbw-am-see.example",
	}, rec.Contacts[0])
	assert.Equal(t, directory.Contact{
		Name:  directory.ContactNameNotFound,
		Phone: directory.PhoneNotFound,
		Email: directory.EmailNotFound,
	}, rec.Contacts[1])
}

func TestExtractEmptyDocumentUsesSentinels(t *testing.T) {
	t.Parallel()

	rec, err := extract.New(extract.DefaultSelectors()).ExtractHTML(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	assert.Equal(t, directory.NewRecord(), rec)
	assert.NotNil(t, rec.Specializations)
	assert.NotNil(t, rec.Contacts)
}

func TestExtractMissingPieces(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		html  string
		check func(t *testing.T, rec directory.Record)
	}{
		{
			name: "main content without paragraph",
			html: `<div class="bbw-detail__content-main">no paragraph</div>`,
			check: func(t *testing.T, rec directory.Record) {
				assert.Equal(t, directory.StreetNotFound, rec.Address.Street)
				assert.Equal(t, directory.CarrierNotFound, rec.Carrier)
			},
		},
		{
			name: "street only address",
			html: `<div class="bbw-detail__content-main"><p>Hauptstr. 1</p></div>`,
			check: func(t *testing.T, rec directory.Record) {
				assert.Equal(t, "Hauptstr. 1", rec.Address.Street)
				assert.Equal(t, directory.CityNotFound, rec.Address.City)
				assert.Equal(t, directory.RegionNotFound, rec.Address.Region)
			},
		},
		{
			name: "link without href",
			html: `<a class="document-title__link">x</a>`,
			check: func(t *testing.T, rec directory.Record) {
				assert.Equal(t, directory.WebsiteNotFound, rec.Website)
			},
		},
		{
			name: "blank title",
			html: `<span class="document-title__headline">   </span>`,
			check: func(t *testing.T, rec directory.Record) {
				assert.Equal(t, directory.TitleNotFound, rec.Title)
			},
		},
		{
			name: "section without list",
			html: `<section class="bbw-detail__section"><p>none</p></section>`,
			check: func(t *testing.T, rec directory.Record) {
				assert.Empty(t, rec.Specializations)
			},
		},
		{
			name: "paragraph without digits keeps empty phone",
			html: `<div class="bbw-detail__contact"><p>Telefon folgt</p></div>`,
			check: func(t *testing.T, rec directory.Record) {
				require.Len(t, rec.Contacts, 1)
				assert.Equal(t, "", rec.Contacts[0].Phone)
				assert.Equal(t, directory.EmailNotFound, rec.Contacts[0].Email)
			},
		},
	}

	ex := extract.New(extract.Selectors{})
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec, err := ex.ExtractHTML(strings.NewReader("<html><body>" + tc.html + "</body></html>"))
			require.NoError(t, err)
			tc.check(t, rec)
		})
	}
}

func TestNewFillsBlankSelectors(t *testing.T) {
	t.Parallel()

	ex := extract.New(extract.Selectors{Title: "h1.custom"})
	rec, err := ex.ExtractHTML(strings.NewReader(`<h1 class="custom">Custom</h1>
<a class="document-title__link" href="/x">x</a>`))
	require.NoError(t, err)
	assert.Equal(t, "Custom", rec.Title)
	assert.Equal(t, "/x", rec.Website)
}
