package database

// Paper is one row of the papers table.
type Paper struct {
	ID              int64
	URL             *string // set for papers collected from feeds
	Title           string
	Authors         string
	Keywords        string
	Abstract        string
	PublicationType string
	PublicationYear int
	SourceCountry   string
	AbstractFetched bool
	AddedAt         *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalPapers     int
	WithAbstract    int
	FromFeeds       int
	PendingAbstract int
}
