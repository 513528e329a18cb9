package anilist

// GraphQLRequest is the body of a GraphQL POST
type GraphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// MediaResponse is the response of the media query
type MediaResponse struct {
	Data   MediaData      `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// MediaData wraps the queried media
type MediaData struct {
	Media *Media `json:"Media"`
}

// Media is an AniList anime
type Media struct {
	ID         int        `json:"id"`
	IDMal      *int       `json:"idMal"`
	Title      MediaTitle `json:"title"`
	Format     string     `json:"format"`
	Status     string     `json:"status"`
	Episodes   int        `json:"episodes"`
	Duration   int        `json:"duration"` // Minutes per episode
	Season     string     `json:"season"`
	SeasonYear int        `json:"seasonYear"`
	CoverImage CoverImage `json:"coverImage"`
	Synonyms   []string   `json:"synonyms"`
	Genres     []string   `json:"genres"`
	Tags       []MediaTag `json:"tags"`
}

// MediaTitle holds the title variants
type MediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// CoverImage holds the cover variants
type CoverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

// MediaTag is a descriptive tag
type MediaTag struct {
	Name string `json:"name"`
}

// GraphQLError is one entry of the errors array
type GraphQLError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}
