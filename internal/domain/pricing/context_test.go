package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func latticeFixture() (z1, z2, s1, s2 uuid.UUID, all []Context) {
	z1, z2, s1, s2 = uuid.New(), uuid.New(), uuid.New(), uuid.New()
	all = []Context{
		MasterContext(),
		ZoneContext(z1), ZoneContext(z2),
		SegmentContext(s1), SegmentContext(s2),
		ZoneSegmentContext(z1, s1), ZoneSegmentContext(z1, s2),
		ZoneSegmentContext(z2, s1), ZoneSegmentContext(z2, s2),
	}
	return
}

func TestContext_Scope(t *testing.T) {
	z, s := uuid.New(), uuid.New()

	assert.Equal(t, ScopeMaster, MasterContext().Scope())
	assert.Equal(t, ScopeZone, ZoneContext(z).Scope())
	assert.Equal(t, ScopeSegment, SegmentContext(s).Scope())
	assert.Equal(t, ScopeZoneSegment, ZoneSegmentContext(z, s).Scope())

	assert.Equal(t, ZoneSegmentContext(z, s), NewContext(&z, &s))
	assert.True(t, NewContext(nil, nil).IsMaster())
}

func TestContextFor(t *testing.T) {
	z, s, nilID := uuid.New(), uuid.New(), uuid.Nil

	tests := []struct {
		name     string
		zone     *uuid.UUID
		segment  *uuid.UUID
		zoneOnly bool
		want     Context
		wantErr  bool
	}{
		{name: "master", want: MasterContext()},
		{name: "zone segment", zone: &z, segment: &s, want: ZoneSegmentContext(z, s)},
		{name: "segment only", segment: &s, want: SegmentContext(s)},
		{name: "zone only drops segment", zone: &z, segment: &s, zoneOnly: true, want: ZoneContext(z)},
		{name: "zone only without zone", segment: &s, zoneOnly: true, wantErr: true},
		{name: "zone only with nothing", zoneOnly: true, wantErr: true},
		{name: "nil zone uuid", zone: &nilID, segment: &s, wantErr: true},
		{name: "nil segment uuid", zone: &z, segment: &nilID, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContextFor(tt.zone, tt.segment, tt.zoneOnly)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidContext)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContext_IsAncestorOf(t *testing.T) {
	z1, z2, s1, s2, _ := latticeFixture()

	tests := []struct {
		name string
		a, b Context
		want bool
	}{
		{"master above zone", MasterContext(), ZoneContext(z1), true},
		{"master above segment", MasterContext(), SegmentContext(s1), true},
		{"master above zone+segment", MasterContext(), ZoneSegmentContext(z1, s1), true},
		{"zone above its zone+segment", ZoneContext(z1), ZoneSegmentContext(z1, s2), true},
		{"segment above its zone+segment", SegmentContext(s1), ZoneSegmentContext(z2, s1), true},
		{"zone not above other zone's cell", ZoneContext(z1), ZoneSegmentContext(z2, s1), false},
		{"segment not above other segment's cell", SegmentContext(s1), ZoneSegmentContext(z1, s2), false},
		{"zone and segment are siblings", ZoneContext(z1), SegmentContext(s1), false},
		{"segment and zone are siblings", SegmentContext(s1), ZoneContext(z1), false},
		{"not reflexive", ZoneContext(z1), ZoneContext(z1), false},
		{"master not above itself", MasterContext(), MasterContext(), false},
		{"child not above parent", ZoneSegmentContext(z1, s1), ZoneContext(z1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.IsAncestorOf(tt.b))
			assert.Equal(t, tt.want, IsAncestor(tt.a, tt.b))
			assert.Equal(t, tt.want, IsStrictChild(tt.b, tt.a))
		})
	}
}

func TestContext_LatticeLaws(t *testing.T) {
	_, _, _, _, all := latticeFixture()

	for _, a := range all {
		assert.False(t, a.IsAncestorOf(a), "irreflexive: %s", a)

		for _, b := range all {
			if a.IsAncestorOf(b) {
				assert.False(t, b.IsAncestorOf(a), "antisymmetric: %s, %s", a, b)
				assert.Less(t, a.Scope().Specificity(), b.Scope().Specificity())
			}
			for _, c := range all {
				if a.IsAncestorOf(b) && b.IsAncestorOf(c) {
					assert.True(t, a.IsAncestorOf(c), "transitive: %s, %s, %s", a, b, c)
				}
			}
		}
	}
}

func TestContext_Lineage(t *testing.T) {
	z, s := uuid.New(), uuid.New()

	t.Run("zone+segment prefers zone over segment", func(t *testing.T) {
		got := ZoneSegmentContext(z, s).Lineage()
		assert.Equal(t, []Context{
			ZoneSegmentContext(z, s),
			ZoneContext(z),
			SegmentContext(s),
			MasterContext(),
		}, got)
	})

	t.Run("single dimension falls back to master", func(t *testing.T) {
		assert.Equal(t, []Context{ZoneContext(z), MasterContext()}, ZoneContext(z).Lineage())
		assert.Equal(t, []Context{SegmentContext(s), MasterContext()}, SegmentContext(s).Lineage())
	})

	t.Run("master has no ancestors", func(t *testing.T) {
		assert.Empty(t, MasterContext().Ancestors())
	})

	t.Run("every ancestor is above the context", func(t *testing.T) {
		c := ZoneSegmentContext(z, s)
		for _, a := range c.Ancestors() {
			assert.True(t, a.IsAncestorOf(c))
		}
	})
}

func TestContext_Key(t *testing.T) {
	z, s := uuid.New(), uuid.New()

	assert.Equal(t, "master", MasterContext().Key())
	assert.Equal(t, "z:"+z.String(), ZoneContext(z).Key())
	assert.Equal(t, "s:"+s.String(), SegmentContext(s).Key())
	assert.Equal(t, "z:"+z.String()+"|s:"+s.String(), ZoneSegmentContext(z, s).Key())
}

func TestClassifyUpdate(t *testing.T) {
	z, s := uuid.New(), uuid.New()

	assert.Equal(t, ShapePerCell, ClassifyUpdate(ZoneContext(z), 3, true))
	assert.Equal(t, ShapeSinglePoint, ClassifyUpdate(ZoneSegmentContext(z, s), 1, false))
	assert.Equal(t, ShapeZoneSegment, ClassifyUpdate(ZoneSegmentContext(z, s), 4, false))
	assert.Equal(t, ShapeZone, ClassifyUpdate(ZoneContext(z), 2, false))
	assert.Equal(t, ShapeSegment, ClassifyUpdate(SegmentContext(s), 2, false))
	assert.Equal(t, ShapeMaster, ClassifyUpdate(MasterContext(), 2, false))
}
