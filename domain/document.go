package domain

import "time"

// Document carries the identity and versioning fields shared by every
// stored kind.
type Document struct {
	ID            string     `bson:"id" json:"id"`
	SchemaVersion int        `bson:"schema_version" json:"schema_version"`
	Revision      int        `bson:"revision" json:"revision"`
	DateCreated   time.Time  `bson:"date_created" json:"date_created"`
	DateModified  *time.Time `bson:"date_modified,omitempty" json:"date_modified,omitempty"`
}

func (d *Document) Doc() *Document { return d }

// Entity is implemented by pointers to every stored kind.
type Entity interface {
	Doc() *Document
}

const CurrentSchemaVersion = 1

// Stamp initialises the versioning fields of a new document.
func (d *Document) Stamp(id string, now time.Time) {
	d.ID = id
	d.SchemaVersion = CurrentSchemaVersion
	d.Revision = 1
	d.DateCreated = now.UTC()
	d.DateModified = nil
}

// Succeed makes d the next revision of prev, keeping its identity and
// creation date.
func (d *Document) Succeed(prev *Document, now time.Time) {
	modified := now.UTC()
	d.ID = prev.ID
	d.SchemaVersion = prev.SchemaVersion
	if d.SchemaVersion == 0 {
		d.SchemaVersion = CurrentSchemaVersion
	}
	d.Revision = prev.Revision + 1
	d.DateCreated = prev.DateCreated
	d.DateModified = &modified
}

// Path is the canonical location of a document of the given kind.
func Path(kind, id string) string {
	return "/catalog/" + kind + "/" + id
}

var (
	_ Entity = (*Artist)(nil)
	_ Entity = (*Genre)(nil)
	_ Entity = (*Release)(nil)
	_ Entity = (*Copy)(nil)
	_ Entity = (*Style)(nil)
	_ Entity = (*Track)(nil)
	_ Entity = (*Crate)(nil)
	_ Entity = (*Cover)(nil)
	_ Entity = (*User)(nil)
)
