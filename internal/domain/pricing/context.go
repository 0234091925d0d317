package pricing

import (
	"strings"

	"github.com/google/uuid"
)

// Scope names which dimensions of a Context are fixed
type Scope string

const (
	ScopeMaster      Scope = "master"
	ScopeZone        Scope = "zone"
	ScopeSegment     Scope = "segment"
	ScopeZoneSegment Scope = "zone_segment"
)

// String returns the string representation of the scope
func (s Scope) String() string {
	return string(s)
}

// Specificity is the number of fixed dimensions: 0 for master, 2 for zone+segment.
func (s Scope) Specificity() int {
	switch s {
	case ScopeZone, ScopeSegment:
		return 1
	case ScopeZoneSegment:
		return 2
	default:
		return 0
	}
}

// Context is a position in the pricing lattice.
// A uuid.Nil dimension means "not fixed". The zero value is the master context.
type Context struct {
	ZoneID    uuid.UUID
	SegmentID uuid.UUID
}

// MasterContext returns the global context (∅, ∅)
func MasterContext() Context {
	return Context{}
}

// ZoneContext returns the context (zone, ∅)
func ZoneContext(zoneID uuid.UUID) Context {
	return Context{ZoneID: zoneID}
}

// SegmentContext returns the context (∅, segment)
func SegmentContext(segmentID uuid.UUID) Context {
	return Context{SegmentID: segmentID}
}

// ZoneSegmentContext returns the context (zone, segment)
func ZoneSegmentContext(zoneID, segmentID uuid.UUID) Context {
	return Context{ZoneID: zoneID, SegmentID: segmentID}
}

// NewContext builds a context from optional identifiers
func NewContext(zoneID, segmentID *uuid.UUID) Context {
	var c Context
	if zoneID != nil {
		c.ZoneID = *zoneID
	}
	if segmentID != nil {
		c.SegmentID = *segmentID
	}
	return c
}

// ContextFor builds a write target from optional identifiers. zoneOnly
// drops the segment and so needs a zone; an explicit uuid.Nil is malformed.
func ContextFor(zoneID, segmentID *uuid.UUID, zoneOnly bool) (Context, error) {
	if zoneID != nil && *zoneID == uuid.Nil {
		return Context{}, ErrInvalidContext.WithMessage("Zone ID must not be the nil UUID")
	}
	if segmentID != nil && *segmentID == uuid.Nil {
		return Context{}, ErrInvalidContext.WithMessage("Segment ID must not be the nil UUID")
	}
	if zoneOnly {
		if zoneID == nil {
			return Context{}, ErrInvalidContext.WithMessage("Applying to all segments requires a zone")
		}
		segmentID = nil
	}
	return NewContext(zoneID, segmentID), nil
}

func (c Context) HasZone() bool    { return c.ZoneID != uuid.Nil }
func (c Context) HasSegment() bool { return c.SegmentID != uuid.Nil }
func (c Context) IsMaster() bool   { return !c.HasZone() && !c.HasSegment() }

// ZoneRef returns the zone as a pointer, nil when unset
func (c Context) ZoneRef() *uuid.UUID {
	if !c.HasZone() {
		return nil
	}
	id := c.ZoneID
	return &id
}

// SegmentRef returns the segment as a pointer, nil when unset
func (c Context) SegmentRef() *uuid.UUID {
	if !c.HasSegment() {
		return nil
	}
	id := c.SegmentID
	return &id
}

// Scope classifies the context by its fixed dimensions
func (c Context) Scope() Scope {
	switch {
	case c.HasZone() && c.HasSegment():
		return ScopeZoneSegment
	case c.HasZone():
		return ScopeZone
	case c.HasSegment():
		return ScopeSegment
	default:
		return ScopeMaster
	}
}

// Equal reports structural equality
func (c Context) Equal(other Context) bool {
	return c == other
}

// IsAncestorOf reports whether every dimension fixed in c is fixed to the
// same value in other, and other fixes strictly more dimensions.
func (c Context) IsAncestorOf(other Context) bool {
	if c == other {
		return false
	}
	if c.HasZone() && c.ZoneID != other.ZoneID {
		return false
	}
	if c.HasSegment() && c.SegmentID != other.SegmentID {
		return false
	}
	return true
}

// IsStrictChildOf reports whether c is strictly more specific than target
// and agrees with it on every dimension target fixes.
func (c Context) IsStrictChildOf(target Context) bool {
	return target.IsAncestorOf(c)
}

// IsAncestor is the lattice predicate a ⊏ b
func IsAncestor(a, b Context) bool {
	return a.IsAncestorOf(b)
}

// IsStrictChild reports whether candidate lies strictly below target
func IsStrictChild(candidate, target Context) bool {
	return candidate.IsStrictChildOf(target)
}

// Lineage returns c followed by its ancestors, most specific first.
// For (Z,S) that is (Z,S), (Z,∅), (∅,S), (∅,∅): zone outranks segment.
func (c Context) Lineage() []Context {
	switch c.Scope() {
	case ScopeZoneSegment:
		return []Context{c, ZoneContext(c.ZoneID), SegmentContext(c.SegmentID), MasterContext()}
	case ScopeZone, ScopeSegment:
		return []Context{c, MasterContext()}
	default:
		return []Context{c}
	}
}

// Ancestors returns the strict ancestors of c, most specific first
func (c Context) Ancestors() []Context {
	return c.Lineage()[1:]
}

// Key is a stable textual identity for the context.
// Active books are unique per key.
func (c Context) Key() string {
	parts := make([]string, 0, 2)
	if c.HasZone() {
		parts = append(parts, "z:"+c.ZoneID.String())
	}
	if c.HasSegment() {
		parts = append(parts, "s:"+c.SegmentID.String())
	}
	if len(parts) == 0 {
		return "master"
	}
	return strings.Join(parts, "|")
}

func (c Context) String() string {
	return c.Key()
}
