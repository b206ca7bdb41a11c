package cite

import (
	"reflect"
	"testing"

	"github.com/dmorey/pagechat/internal/document"
)

func buildDoc(t *testing.T, pages ...string) *document.Document {
	t.Helper()
	doc, err := document.Build(pages)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

func TestMatch_SinglePageWithStrongOverlap(t *testing.T) {
	answer := "The Quarterly Revenue Report rose 14% in Q3 2024."
	doc := buildDoc(t,
		"introduction text with nothing notable",
		"chapter two covers unrelated material",
		"As stated, the Quarterly Revenue Report rose 14% in Q3 2024 overall.",
	)

	got := Match(answer, doc)
	want := []int{3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMatch_NoOverlapYieldsEmptySet(t *testing.T) {
	doc := buildDoc(t, "page about horticulture", "page about sailing")

	got := Match("The Annual Compliance Filing was submitted on March 3.", doc)
	if len(got) != 0 {
		t.Errorf("expected no citations, got %v", got)
	}
}

func TestMatch_WeakOverlapStaysBelowThreshold(t *testing.T) {
	// A single 15-character phrase scores 15/4 = 3.75, not enough to cite.
	answer := "See Appendix Q9 now. Nothing else here."
	doc := buildDoc(t, "See Appendix Q9 for details.")

	got := Match(answer, doc)
	if len(got) != 0 {
		t.Errorf("expected score below threshold, got citations %v", got)
	}
}

func TestMatch_IsDeterministic(t *testing.T) {
	answer := "The Quarterly Revenue Report rose 14% in Q3 2024. Operating Margin Expansion continued."
	doc := buildDoc(t,
		"The Quarterly Revenue Report rose 14% in Q3 2024 across segments.",
		"Operating Margin Expansion continued through Q3 2024 as planned.",
	)

	first := Match(answer, doc)
	for i := 0; i < 20; i++ {
		if got := Match(answer, doc); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic result: %v vs %v", got, first)
		}
	}
}

func TestMatch_CaseSensitiveContainment(t *testing.T) {
	// The page carries the phrase only in a different case, so it must not match.
	answer := "The Quarterly Revenue Report rose 14% in Q3 2024."
	doc := buildDoc(t, "the quarterly revenue report rose 14% in q3 2024.")

	if got := Match(answer, doc); len(got) != 0 {
		t.Errorf("expected case-sensitive miss, got %v", got)
	}
}

func TestMatch_ResultAscending(t *testing.T) {
	shared := "The Quarterly Revenue Report rose 14% in Q3 2024."
	doc := buildDoc(t, shared, "nothing relevant on this page", shared)

	got := Match(shared, doc)
	want := []int{1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
