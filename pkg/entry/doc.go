// Package entry models linked content entries as the content API returns
// them and resolves their content types.
//
// The validator itself never sees these types. It works on opaque items
// plus a resolution function; ContentTypeOf is that function for API
// entries:
//
//	result := layout.Validate(cfg, entries, entry.ContentTypeOf)
//
// The Client fetches the current linked-entry list for a field reference
// over HTTP, with bounded retries for transient failures. A fetch either
// yields the complete list or an error; callers never validate a partial
// list.
package entry
