// Package notion implements publisher.Service on top of a Notion database.
package notion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/JakeFAU/bbw-directory/internal/publisher"
)

// maxTextLength is the longest content Notion accepts in one rich text object.
const maxTextLength = 2000

// ErrMissingCredentials is returned when the API key or database ID is empty.
var ErrMissingCredentials = errors.New("notion api key and database id are required")

type databaseAPI interface {
	Get(ctx context.Context, id notionapi.DatabaseID) (*notionapi.Database, error)
	Update(ctx context.Context, id notionapi.DatabaseID, request *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error)
}

type pageAPI interface {
	Create(ctx context.Context, request *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// Config identifies the target database.
type Config struct {
	APIKey     string
	DatabaseID string
	Properties publisher.PropertyNames
}

// Client talks to one Notion database.
type Client struct {
	databases  databaseAPI
	pages      pageAPI
	databaseID notionapi.DatabaseID
	names      publisher.PropertyNames
}

// New returns a Client authenticated with cfg.APIKey.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.DatabaseID == "" {
		return nil, ErrMissingCredentials
	}
	api := notionapi.NewClient(notionapi.Token(cfg.APIKey))
	return newClient(api.Database, api.Page, cfg), nil
}

func newClient(databases databaseAPI, pages pageAPI, cfg Config) *Client {
	return &Client{
		databases:  databases,
		pages:      pages,
		databaseID: notionapi.DatabaseID(cfg.DatabaseID),
		names:      cfg.Properties,
	}
}

// Schema retrieves the database and converts its property configuration.
func (c *Client) Schema(ctx context.Context) (publisher.Schema, error) {
	db, err := c.databases.Get(ctx, c.databaseID)
	if err != nil {
		return nil, fmt.Errorf("retrieve database %s: %w", c.databaseID, err)
	}
	schema := make(publisher.Schema, len(db.Properties))
	for name, cfg := range db.Properties {
		prop, err := convertProperty(cfg)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}
		schema[name] = prop
	}
	return schema, nil
}

// UpdateOptions replaces the option list of a select or multi-select property.
func (c *Client) UpdateOptions(ctx context.Context, property string, kind publisher.Kind, options []publisher.Option) error {
	opts := make([]notionapi.Option, 0, len(options))
	for _, o := range options {
		opts = append(opts, notionapi.Option{Name: o.Name, Color: notionapi.Color(o.Color)})
	}

	var cfg notionapi.PropertyConfig
	switch kind {
	case publisher.KindSelect:
		cfg = &notionapi.SelectPropertyConfig{
			Type:   notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{Options: opts},
		}
	case publisher.KindMultiSelect:
		cfg = &notionapi.MultiSelectPropertyConfig{
			Type:        notionapi.PropertyConfigTypeMultiSelect,
			MultiSelect: notionapi.Select{Options: opts},
		}
	default:
		return fmt.Errorf("%w: %q is %s", publisher.ErrPropertyKind, property, kind)
	}

	_, err := c.databases.Update(ctx, c.databaseID, &notionapi.DatabaseUpdateRequest{
		Properties: notionapi.PropertyConfigs{property: cfg},
	})
	if err != nil {
		return fmt.Errorf("update database %s: %w", c.databaseID, err)
	}
	return nil
}

// CreateEntry creates one page in the database.
func (c *Client) CreateEntry(ctx context.Context, entry publisher.Entry) (string, error) {
	page, err := c.pages.Create(ctx, c.pageRequest(entry))
	if err != nil {
		return "", fmt.Errorf("create page: %w", err)
	}
	return string(page.ID), nil
}

func (c *Client) pageRequest(entry publisher.Entry) *notionapi.PageCreateRequest {
	specs := make([]notionapi.Option, 0, len(entry.Specializations))
	for _, s := range entry.Specializations {
		specs = append(specs, notionapi.Option{Name: s})
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: c.databaseID,
		},
		Properties: notionapi.Properties{
			c.names.Title:           notionapi.TitleProperty{Title: richText(entry.Title)},
			c.names.Website:         notionapi.URLProperty{URL: entry.Website},
			c.names.Address:         notionapi.RichTextProperty{RichText: richText(entry.Address)},
			c.names.Carrier:         notionapi.RichTextProperty{RichText: richText(entry.Carrier)},
			c.names.Region:          notionapi.SelectProperty{Select: notionapi.Option{Name: entry.Region}},
			c.names.Specializations: notionapi.MultiSelectProperty{MultiSelect: specs},
			c.names.Contacts:        notionapi.RichTextProperty{RichText: richText(entry.Contacts)},
		},
	}
}

// richText splits content into as many text objects as Notion's length limit requires.
func richText(content string) []notionapi.RichText {
	runes := []rune(content)
	if len(runes) == 0 {
		return []notionapi.RichText{{Text: &notionapi.Text{Content: ""}}}
	}
	out := make([]notionapi.RichText, 0, len(runes)/maxTextLength+1)
	for start := 0; start < len(runes); start += maxTextLength {
		end := min(start+maxTextLength, len(runes))
		out = append(out, notionapi.RichText{Text: &notionapi.Text{Content: string(runes[start:end])}})
	}
	return out
}

// propertyView is the subset of a property configuration the publisher reads.
type propertyView struct {
	Type        string      `json:"type"`
	Select      *optionList `json:"select"`
	MultiSelect *optionList `json:"multi_select"`
}

type optionList struct {
	Options []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	} `json:"options"`
}

func convertProperty(cfg notionapi.PropertyConfig) (publisher.Property, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return publisher.Property{}, fmt.Errorf("marshal property config: %w", err)
	}
	var view propertyView
	if err := json.Unmarshal(raw, &view); err != nil {
		return publisher.Property{}, fmt.Errorf("decode property config: %w", err)
	}

	prop := publisher.Property{Kind: publisher.Kind(view.Type)}
	list := view.Select
	if prop.Kind == publisher.KindMultiSelect {
		list = view.MultiSelect
	}
	if list != nil && (prop.Kind == publisher.KindSelect || prop.Kind == publisher.KindMultiSelect) {
		for _, o := range list.Options {
			prop.Options = append(prop.Options, publisher.Option{ID: o.ID, Name: o.Name, Color: o.Color})
		}
	}
	return prop, nil
}
