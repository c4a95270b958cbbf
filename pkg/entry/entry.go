package entry

// Entry is a resolved linked entry in the shape the content API returns:
// the content type identifier sits at sys.contentType.sys.id.
type Entry struct {
	// Sys carries the entry's system metadata.
	Sys Sys `json:"sys" yaml:"sys"`

	// Fields holds the entry's field values. The validator never reads
	// them; they are kept so callers can round-trip entries unchanged.
	Fields map[string]interface{} `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Sys is an entry's system metadata.
type Sys struct {
	// ID is the entry identifier.
	ID string `json:"id" yaml:"id"`

	// ContentType links to the entry's content type. Unresolved links
	// (deleted or unpublished entries) come back without it.
	ContentType *ContentTypeLink `json:"contentType,omitempty" yaml:"contentType,omitempty"`
}

// ContentTypeLink wraps the nested content type reference.
type ContentTypeLink struct {
	Sys ContentTypeSys `json:"sys" yaml:"sys"`
}

// ContentTypeSys carries the content type identifier.
type ContentTypeSys struct {
	ID string `json:"id" yaml:"id"`
}

// ContentTypeOf resolves an entry's content type identifier. It returns
// ok == false when any part of the nested reference is absent or blank,
// which callers report as an unresolved type rather than a failure.
func ContentTypeOf(e Entry) (string, bool) {
	if e.Sys.ContentType == nil {
		return "", false
	}
	if e.Sys.ContentType.Sys.ID == "" {
		return "", false
	}
	return e.Sys.ContentType.Sys.ID, true
}
