package model

import "time"

// Post is a blog/portfolio entry.
//
// Only ID, Title and Body are mandatory. Everything else is optional display
// data: Image is a URL, Tags an ordered list, Category a single label, and
// the Company* fields are opaque text attached to portfolio posts. They are
// stored and returned verbatim and participate in no logic.
//
// JSON field names are snake_case because that is the wire shape the public
// API has always exposed (created_at, company_name, ...).
type Post struct {
	ID                 int64      `json:"id"                            db:"id"`
	Title              string     `json:"title"                         db:"title"`
	Body               string     `json:"body"                          db:"body"`
	Image              *string    `json:"image,omitempty"               db:"image"`
	Tags               []string   `json:"tags,omitempty"                db:"tags"`
	Category           *string    `json:"category,omitempty"            db:"category"`
	CompanyName        *string    `json:"company_name,omitempty"        db:"company_name"`
	CompanyLogo        *string    `json:"company_logo,omitempty"        db:"company_logo"`
	CompanyDescription *string    `json:"company_description,omitempty" db:"company_description"`
	CreatedAt          *time.Time `json:"created_at,omitempty"          db:"created_at"`
}
