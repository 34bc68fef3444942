package schema

import (
	"path/filepath"
	"strings"
)

// SourceKind tells whether a document was read from disk or from an fs.FS.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
)

// Source names the origin of a schema document. Location appears in load
// errors and duplicate-form reports.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile describes a document read from path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS describes a document read from an fs.FS entry such as the
// embedded forms directory.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: strings.TrimPrefix(filepath.ToSlash(name), "./")}
}
