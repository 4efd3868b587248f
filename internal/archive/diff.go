package archive

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest returns the BLAKE3-256 hash of the part's uncompressed content as
// lowercase hex.
func (p Part) Digest() string {
	sum := blake3.Sum256(p.Data)
	return hex.EncodeToString(sum[:])
}

// ChangeKind classifies a part-level difference between two archives.
type ChangeKind string

const (
	PartAdded    ChangeKind = "added"
	PartRemoved  ChangeKind = "removed"
	PartModified ChangeKind = "modified"
)

// PartChange is one part that differs between two archives.
type PartChange struct {
	Name string
	Kind ChangeKind
}

// Diff compares two archives by part name and content digest. Removed and
// modified parts are listed in the order of from, added parts in the order
// of to. Identical archives yield no changes.
func Diff(from, to *Archive) []PartChange {
	var changes []PartChange
	for _, p := range from.parts {
		i, ok := to.index[p.Name]
		if !ok {
			changes = append(changes, PartChange{Name: p.Name, Kind: PartRemoved})
			continue
		}
		if p.Digest() != to.parts[i].Digest() {
			changes = append(changes, PartChange{Name: p.Name, Kind: PartModified})
		}
	}
	for _, p := range to.parts {
		if !from.Has(p.Name) {
			changes = append(changes, PartChange{Name: p.Name, Kind: PartAdded})
		}
	}
	return changes
}
