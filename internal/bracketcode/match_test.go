package bracketcode

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yanizio/trailhead/internal/content"
)

var (
	idA = uuid.MustParse("7c0e6f0a-3a47-4c38-9d7f-0f8f0b1d2a11")
	idB = uuid.MustParse("d41f1c2b-8e0d-4a8e-a0b5-6a5b7e9c4f22")
)

func TestFindWithDisplayText(t *testing.T) {
	cases := []string{
		"{{photo " + idA.String() + "; text Sunrise at the lake; extra}}",
		"before {{photo " + idA.String() + ";text  Sunrise at the lake ;}} after",
		"{{ photo " + idA.String() + " ; TEXT Sunrise at the lake;}}",
	}
	for _, in := range cases {
		got := Find(in, "photo")
		if len(got) != 1 {
			t.Fatalf("%q: want 1 match, got %d", in, len(got))
		}
		if got[0].DisplayText != "Sunrise at the lake" {
			t.Fatalf("%q: display text %q", in, got[0].DisplayText)
		}
		if len(got[0].ContentIDs) != 1 || got[0].ContentIDs[0] != idA {
			t.Fatalf("%q: ids %v", in, got[0].ContentIDs)
		}
	}
}

func TestFindPlain(t *testing.T) {
	in := "See {{photo " + idA.String() + "; Sunrise}} and {{photo " + idB.String() + "}}."
	got := Find(in, "photo")
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d", len(got))
	}
	for _, m := range got {
		if m.DisplayText != "" {
			t.Fatalf("plain code got display text %q", m.DisplayText)
		}
	}
	if got[0].ContentIDs[0] != idA || got[1].ContentIDs[0] != idB {
		t.Fatalf("ids out of order: %v %v", got[0].ContentIDs, got[1].ContentIDs)
	}
}

func TestFindMixedDoesNotDoubleMatch(t *testing.T) {
	in := "{{photo " + idA.String() + "; text One;}} {{photo " + idB.String() + ";}}"
	got := Find(in, "photo")
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d: %+v", len(got), got)
	}
	if got[0].DisplayText != "One" || got[1].DisplayText != "" {
		t.Fatalf("unexpected display texts %q %q", got[0].DisplayText, got[1].DisplayText)
	}
}

func TestFindIsTokenExact(t *testing.T) {
	in := "{{photolink " + idA.String() + ";}} {{Photo " + idB.String() + ";}}"
	if got := Find(in, "photo"); len(got) != 0 {
		t.Fatalf("photo must not match photolink or Photo: %+v", got)
	}
	if got := Find(in, "photolink"); len(got) != 1 {
		t.Fatalf("photolink: want 1, got %d", len(got))
	}
}

func TestFindDropsMalformedIDs(t *testing.T) {
	in := "{{photo not-an-id;}} {{photo " + idA.String() + ";}}"
	got := Find(in, "photo")
	if len(got) != 1 || got[0].ContentIDs[0] != idA {
		t.Fatalf("want only the valid code, got %+v", got)
	}
}

func TestFindEmptyInput(t *testing.T) {
	if got := Find("   \n", "photo"); got != nil {
		t.Fatalf("want nil, got %+v", got)
	}
	if got := Find("no codes here", "photo"); len(got) != 0 {
		t.Fatalf("want none, got %+v", got)
	}
}

func TestFindSpecial(t *testing.T) {
	in := "{{index;}} {{index; text Home;}} {{indexrss;}} {{index}}"
	got := FindSpecial(in, "index")
	if len(got) != 3 {
		t.Fatalf("want 3 index codes, got %d: %+v", len(got), got)
	}
	if got[0].DisplayText != "Home" {
		t.Fatalf("display text first, got %q", got[0].DisplayText)
	}
}

func TestFindGalleries(t *testing.T) {
	in := "intro\n[[picturegallery\n  {{photo " + idA.String() + ";}}\n\n\t{{point " + idB.String() + ";}}  {{photo " + idA.String() + ";}}\n]]\noutro"
	got := FindGalleries(in)
	if len(got) != 1 {
		t.Fatalf("want 1 gallery, got %d", len(got))
	}
	ids := got[0].ContentIDs
	if len(ids) != 2 || ids[0] != idA || ids[1] != idB {
		t.Fatalf("want [A, B], got %v", ids)
	}
}

func TestContentIDs(t *testing.T) {
	in := "{{postlink " + idB.String() + ";}} [[picturegallery {{photo " + idA.String() + ";}}]] {{photo " + idA.String() + ";}} " + uuid.NewString()
	got := ContentIDs(in)
	if len(got) != 2 || got[0] != idB || got[1] != idA {
		t.Fatalf("want [B, A], got %v", got)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	for _, k := range content.Kinds {
		c := content.New(k)
		c.Base().ContentID = uuid.New()
		c.Base().Title = "Odd {title}; with [brackets]"
		code := Create(c)
		got := Find(code, DefaultToken(k))
		if len(got) != 1 || got[0].ContentIDs[0] != c.Base().ContentID {
			t.Fatalf("%s: round trip of %q failed: %+v", k, code, got)
		}
		if got[0].DisplayText != "" {
			t.Fatalf("%s: title leaked into display text", k)
		}
	}
}
