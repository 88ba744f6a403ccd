// Package directory defines the core types shared across the scrape and publish pipelines.
package directory

import "encoding/json"

// Sentinel values substituted for fields whose source markup was absent.
const (
	TitleNotFound       = "title not found"
	WebsiteNotFound     = "website not found"
	StreetNotFound      = "street not found"
	CityNotFound        = "city not found"
	RegionNotFound      = "region not found"
	CarrierNotFound     = "carrier not found"
	ContactNameNotFound = "contact name not found"
	PhoneNotFound       = "phone not found"
	EmailNotFound       = "email not found"
)

// Address is the fetch location of one source page.
type Address = string

// PostalAddress is the street/city/region triple parsed from a page's address block.
type PostalAddress struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Region string `json:"region"`
}

// Contact is one person listed on a detail page.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Record is the structured result of extracting one detail page.
type Record struct {
	Title           string        `json:"title"`
	Website         string        `json:"website"`
	Address         PostalAddress `json:"address"`
	Carrier         string        `json:"carrier"`
	Specializations []string      `json:"specializations"`
	Contacts        []Contact     `json:"contacts"`
}

// NewRecord returns a Record with every field set to its sentinel.
func NewRecord() Record {
	return Record{
		Title:   TitleNotFound,
		Website: WebsiteNotFound,
		Address: PostalAddress{
			Street: StreetNotFound,
			City:   CityNotFound,
			Region: RegionNotFound,
		},
		Carrier:         CarrierNotFound,
		Specializations: []string{},
		Contacts:        []Contact{},
	}
}

// UnmarshalJSON decodes a stored record on top of NewRecord, so keys missing
// from hand-edited or older files come back as sentinels and lists never as null.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	decoded := plain(NewRecord())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Specializations == nil {
		decoded.Specializations = []string{}
	}
	if decoded.Contacts == nil {
		decoded.Contacts = []Contact{}
	}
	*r = Record(decoded)
	return nil
}

// UnmarshalJSON fills keys missing from a stored contact with sentinels.
func (c *Contact) UnmarshalJSON(data []byte) error {
	type plain Contact
	decoded := plain{
		Name:  ContactNameNotFound,
		Phone: PhoneNotFound,
		Email: EmailNotFound,
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Contact(decoded)
	return nil
}
