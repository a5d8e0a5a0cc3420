package count

import (
	"testing"

	"github.com/biogo/hts/sam"
)

func newTestRecord(t *testing.T, flags sam.Flags, mapQ byte) *sam.Record {
	t.Helper()
	ref, err := sam.NewReference("chr1", "", "", 1000, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	cigar, err := sam.ParseCigar([]byte("5M"))
	if err != nil {
		t.Fatal(err)
	}
	r, err := sam.NewRecord("read1", ref, nil, 9, -1, 0, mapQ, cigar, []byte("ACGTA"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	r.Flags = flags
	return r
}

func withNH(t *testing.T, r *sam.Record, n int) *sam.Record {
	t.Helper()
	aux, err := sam.NewAux(nhTag, n)
	if err != nil {
		t.Fatal(err)
	}
	r.AuxFields = append(r.AuxFields, aux)
	return r
}

func TestFilterRecordOrderFirstMatchWins(t *testing.T) {
	f := &Filter{MinMappingQuality: 10}

	// Unmapped beats everything else, even a low MAPQ.
	if got := f.Record(newTestRecord(t, sam.Unmapped, 0)); got != Unmapped {
		t.Errorf("Record(unmapped) = %v, want Unmapped", got)
	}

	// Secondary, when not allowed, is reported even though MAPQ also fails.
	if got := f.Record(newTestRecord(t, sam.Secondary, 0)); got != Secondary {
		t.Errorf("Record(secondary) = %v, want Secondary", got)
	}

	fAllowSecondary := &Filter{MinMappingQuality: 10, WithSecondaryRecords: true}
	if got := fAllowSecondary.Record(newTestRecord(t, sam.Secondary, 0)); got != LowQuality {
		t.Errorf("Record(secondary, allowed) = %v, want LowQuality", got)
	}

	if got := f.Record(newTestRecord(t, sam.Supplementary, 0)); got != Supplementary {
		t.Errorf("Record(supplementary) = %v, want Supplementary", got)
	}

	if got := f.Record(newTestRecord(t, 0, 5)); got != LowQuality {
		t.Errorf("Record(low mapq) = %v, want LowQuality", got)
	}

	if got := f.Record(newTestRecord(t, sam.Duplicate, 40)); got != Duplicate {
		t.Errorf("Record(duplicate) = %v, want Duplicate", got)
	}

	if got := f.Record(withNH(t, newTestRecord(t, 0, 40), 3)); got != Nonunique {
		t.Errorf("Record(NH=3) = %v, want Nonunique", got)
	}

	if got := f.Record(newTestRecord(t, 0, 40)); got != Kept {
		t.Errorf("Record(clean) = %v, want Kept", got)
	}
}

func TestFilterRecordAllowsNonuniqueWhenConfigured(t *testing.T) {
	f := &Filter{WithNonuniqueRecords: true}
	if got := f.Record(withNH(t, newTestRecord(t, 0, 0), 5)); got != Kept {
		t.Errorf("Record(NH=5, allowed) = %v, want Kept", got)
	}
}

func TestFilterRecordTreatsMissingNHAsUnique(t *testing.T) {
	f := &Filter{}
	if got := f.Record(newTestRecord(t, 0, 0)); got != Kept {
		t.Errorf("Record(no NH tag) = %v, want Kept", got)
	}
}

func TestFilterPairDropsOnEitherMateFailing(t *testing.T) {
	f := &Filter{MinMappingQuality: 10}
	good := newTestRecord(t, 0, 40)
	bad := newTestRecord(t, sam.Unmapped, 40)

	if got := f.Pair(bad, good); got != Unmapped {
		t.Errorf("Pair(bad, good) = %v, want Unmapped", got)
	}
	if got := f.Pair(good, bad); got != Unmapped {
		t.Errorf("Pair(good, bad) = %v, want Unmapped", got)
	}
	if got := f.Pair(good, good); got != Kept {
		t.Errorf("Pair(good, good) = %v, want Kept", got)
	}
}

func TestFilterPrimaryOnly(t *testing.T) {
	cases := []struct {
		secondary, supplementary, want bool
	}{
		{false, false, true},
		{true, false, false},
		{false, true, false},
		{true, true, false},
	}
	for _, c := range cases {
		f := &Filter{WithSecondaryRecords: c.secondary, WithSupplementaryRecords: c.supplementary}
		if got := f.PrimaryOnly(); got != c.want {
			t.Errorf("PrimaryOnly(secondary=%v, supplementary=%v) = %v, want %v", c.secondary, c.supplementary, got, c.want)
		}
	}
}
