package feature

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ViolationKind identifies a repository inconsistency.
type ViolationKind string

// Violation kinds. Violations are reported, never auto-fixed, because
// auto-resolution would guess user intent.
const (
	ViolationMultipleActive ViolationKind = "multiple-active"
	ViolationDuplicateID    ViolationKind = "duplicate-identifier"
)

// Violation is a detected inconsistency in the persisted collection.
type Violation struct {
	Kind   ViolationKind
	ID     string
	Detail string
}

// RecordWarning attaches a parse warning to the record it came from.
type RecordWarning struct {
	ID      string
	Warning Warning
}

// Index is a point-in-time snapshot of the whole repository.
type Index struct {
	// Records is keyed by identifier. When two documents resolve to the
	// same identifier, both are kept under disambiguated "<id>#<status>"
	// keys and a DuplicateID violation is recorded.
	Records    map[string]Record
	Violations []Violation
	Warnings   []RecordWarning
}

// dupKey is the disambiguated map key for colliding identifiers.
func dupKey(id string, status Status) string {
	return id + "#" + string(status)
}

// Lookup finds a record by identifier. Returns ErrAmbiguousID if the
// identifier collided during the scan and ErrNotFound otherwise.
func (idx Index) Lookup(id string) (Record, error) {
	if rec, ok := idx.Records[id]; ok {
		return rec, nil
	}

	for key := range idx.Records {
		if base, _, found := strings.Cut(key, "#"); found && base == id {
			return Record{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
	}

	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Active returns the active record, if exactly one exists.
func (idx Index) Active() (Record, bool) {
	var (
		active Record
		found  bool
	)

	for _, rec := range idx.Records {
		if rec.Status == StatusActive {
			if found {
				return Record{}, false
			}

			active = rec
			found = true
		}
	}

	return active, found
}

// OtherActive returns an active record other than id, if any exist. Unlike
// Active it does not require the repository to be consistent: with several
// candidates it reports the lexically smallest identifier, so activation is
// refused (deterministically) even when the single-active invariant is
// already violated.
func (idx Index) OtherActive(id string) (Record, bool) {
	var (
		other Record
		found bool
	)

	for _, rec := range idx.Records {
		if rec.Status != StatusActive || rec.ID == id {
			continue
		}

		if !found || rec.ID < other.ID {
			other = rec
			found = true
		}
	}

	return other, found
}

// ByStatus returns records with the given status, sorted by priority
// (highest first) then identifier.
func (idx Index) ByStatus(status Status) []Record {
	var recs []Record

	for _, rec := range idx.Records {
		if rec.Status == status {
			recs = append(recs, rec)
		}
	}

	slices.SortFunc(recs, func(a, b Record) int {
		if ra, rb := priorityRank(a.Priority), priorityRank(b.Priority); ra != rb {
			return ra - rb
		}

		return strings.Compare(a.ID, b.ID)
	})

	return recs
}

// Scan builds the authoritative index from the features directory and the
// completed directory. It is read-only and idempotent: two scans with no
// intervening writes return structurally identical results.
//
// One malformed document never aborts the scan; it is flagged and skipped so
// reporting still covers everything else.
func Scan(featuresDir, completedDir string) (Index, error) {
	idx := Index{Records: make(map[string]Record)}

	err := scanDir(&idx, featuresDir, "")
	if err != nil {
		return Index{}, err
	}

	err = scanDir(&idx, completedDir, StatusDone)
	if err != nil {
		return Index{}, err
	}

	detectMultipleActive(&idx)

	return idx, nil
}

// scanDir walks one directory. forceStatus overrides the filename convention
// (used for the completed directory, where location implies done).
func scanDir(idx *Index, dir string, forceStatus Status) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil // no directory = no records
	}

	if err != nil {
		return fmt.Errorf("reading feature directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		id, status, ok := DecodeFilename(entry.Name())
		if !ok {
			continue
		}

		if forceStatus != "" {
			status = forceStatus
		}

		path := filepath.Join(dir, entry.Name())

		content, readErr := os.ReadFile(path) //nolint:gosec // path comes from directory listing
		if readErr != nil {
			idx.Warnings = append(idx.Warnings, RecordWarning{
				ID:      id,
				Warning: Warning{Field: "file", Message: readErr.Error()},
			})

			continue
		}

		rec, warnings := ParseRecord(content, id, status)
		for _, w := range warnings {
			idx.Warnings = append(idx.Warnings, RecordWarning{ID: id, Warning: w})
		}

		insertRecord(idx, rec)
	}

	return nil
}

// insertRecord adds a record, demoting colliding identifiers to
// disambiguated keys. Both colliding records stay in the map so reporting
// remains best-effort.
func insertRecord(idx *Index, rec Record) {
	existing, collides := idx.Records[rec.ID]
	if !collides {
		idx.Records[rec.ID] = rec

		return
	}

	delete(idx.Records, rec.ID)
	idx.Records[dupKey(existing.ID, existing.Status)] = existing
	idx.Records[dupKey(rec.ID, rec.Status)] = rec

	idx.Violations = append(idx.Violations, Violation{
		Kind:   ViolationDuplicateID,
		ID:     rec.ID,
		Detail: fmt.Sprintf("resolves to both %s and %s", existing.Status, rec.Status),
	})
}

func detectMultipleActive(idx *Index) {
	var active []string

	for key, rec := range idx.Records {
		if rec.Status == StatusActive {
			active = append(active, key)
		}
	}

	if len(active) <= 1 {
		return
	}

	slices.Sort(active)

	idx.Violations = append(idx.Violations, Violation{
		Kind:   ViolationMultipleActive,
		ID:     active[0],
		Detail: fmt.Sprintf("%d records are active: %s", len(active), strings.Join(active, ", ")),
	})
}
