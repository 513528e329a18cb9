package kitsu

// Document is the root of a JSON:API response
type Document struct {
	Data     Resource   `json:"data"`
	Included []Resource `json:"included,omitempty"`
	Errors   []APIError `json:"errors,omitempty"`
}

// Resource is one JSON:API resource object. Attributes differ per type;
// anime, mappings and categories share the struct and leave unused fields empty.
type Resource struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

// Attributes holds the fields of anime, mapping and category resources
type Attributes struct {
	// anime
	CanonicalTitle    string            `json:"canonicalTitle,omitempty"`
	Titles            map[string]string `json:"titles,omitempty"`
	AbbreviatedTitles []string          `json:"abbreviatedTitles,omitempty"`
	Subtype           string            `json:"subtype,omitempty"`
	Status            string            `json:"status,omitempty"`
	EpisodeCount      int               `json:"episodeCount,omitempty"`
	EpisodeLength     int               `json:"episodeLength,omitempty"` // Minutes
	StartDate         string            `json:"startDate,omitempty"`     // YYYY-MM-DD
	PosterImage       *Image            `json:"posterImage,omitempty"`

	// mappings
	ExternalSite string `json:"externalSite,omitempty"`
	ExternalID   string `json:"externalId,omitempty"`

	// categories
	Title string `json:"title,omitempty"`
}

// Image holds the poster variants
type Image struct {
	Tiny     string `json:"tiny,omitempty"`
	Small    string `json:"small,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Large    string `json:"large,omitempty"`
	Original string `json:"original,omitempty"`
}

// APIError is a JSON:API error object
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status string `json:"status,omitempty"`
}
