package trakt

// IDs holds the identifiers Trakt attaches to every media object
type IDs struct {
	Trakt int64  `json:"trakt"`
	Slug  string `json:"slug,omitempty"`
	TVDB  int64  `json:"tvdb,omitempty"`
	IMDB  string `json:"imdb,omitempty"`
	TMDB  int64  `json:"tmdb,omitempty"`
}

// Show is the standard show object (/shows/popular returns a list of these)
type Show struct {
	Title string `json:"title"`
	Year  int    `json:"year,omitempty"`
	IDs   IDs    `json:"ids"`
}

// TrendingShow wraps a show with its current watcher count (/shows/trending)
type TrendingShow struct {
	Watchers int  `json:"watchers"`
	Show     Show `json:"show"`
}

// AnticipatedShow wraps a show with the number of lists it appears on (/shows/anticipated)
type AnticipatedShow struct {
	ListCount int  `json:"list_count"`
	Show      Show `json:"show"`
}

// Country is a metadata entry from /countries/{type}
type Country struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
