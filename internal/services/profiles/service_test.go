package profiles

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

type swipedStub struct {
	ids map[string]struct{}
	err error
}

func (s swipedStub) SwipedIDs(context.Context, string) (map[string]struct{}, error) {
	return s.ids, s.err
}

type upperPhotos struct{}

func (upperPhotos) Candidate(_ context.Context, c model.Candidate) model.Candidate {
	for i := range c.Photos {
		c.Photos[i] = strings.ToUpper(c.Photos[i])
	}
	return c
}

func TestDefaultCatalogue(t *testing.T) {
	cat, err := DefaultCatalogue()
	if err != nil {
		t.Fatalf("default catalogue: %v", err)
	}
	if len(cat) != 5 {
		t.Fatalf("unexpected catalogue size: %d", len(cat))
	}
	if cat[0].Name != "Emma Johnson" || cat[0].Age != 25 || cat[0].Location != "New York, NY" {
		t.Fatalf("unexpected first candidate: %+v", cat[0])
	}
	if cat[4].Name != "Emily Chen" || cat[4].DistanceKM != 20 {
		t.Fatalf("unexpected last candidate: %+v", cat[4])
	}
}

func TestParseCatalogueRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"missing id":   "- name: A\n  photos: [x]\n",
		"no photos":    "- id: a\n  name: A\n",
		"duplicate id": "- id: a\n  photos: [x]\n- id: a\n  photos: [y]\n",
		"not yaml":     "{{{",
	}
	for name, raw := range cases {
		if _, err := ParseCatalogue([]byte(raw)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadExcludesSwipedAndSelf(t *testing.T) {
	cat, _ := DefaultCatalogue()
	svc := NewService(cat, swipedStub{ids: map[string]struct{}{"2": {}, "4": {}}}, nil, nil)

	got, err := svc.Load(context.Background(), "1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "3,5" {
		t.Fatalf("unexpected queue: got %v want [3 5]", ids)
	}
}

func TestLoadResolvesPhotosWithoutTouchingCatalogue(t *testing.T) {
	cat := []model.Candidate{{ID: "a", Photos: []string{"s3://b/a.jpg"}}}
	svc := NewService(cat, nil, upperPhotos{}, nil)

	got, err := svc.Load(context.Background(), "u")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0].Photos[0] != "S3://B/A.JPG" {
		t.Fatalf("photos were not resolved: %v", got[0].Photos)
	}
	if cat[0].Photos[0] != "s3://b/a.jpg" {
		t.Fatalf("catalogue was mutated: %v", cat[0].Photos)
	}
}

func TestLoadWrapsSwipedError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(nil, swipedStub{err: boom}, nil, nil)
	if _, err := svc.Load(context.Background(), "u"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestMemorySwipesFeedLoadExclusion(t *testing.T) {
	cat, err := DefaultCatalogue()
	if err != nil {
		t.Fatalf("default catalogue: %v", err)
	}
	history := NewMemorySwipes()
	svc := NewService(cat, history, nil, nil)
	ctx := context.Background()

	if err := history.Record(ctx, model.Swipe{UserID: "u1", CandidateID: cat[0].ID}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := history.Record(ctx, model.Swipe{UserID: "u1"}); err == nil {
		t.Fatalf("expected error for swipe without candidate")
	}

	got, err := svc.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(cat)-1 || got[0].ID != cat[1].ID {
		t.Fatalf("unexpected queue for u1: %d candidates", len(got))
	}

	other, err := svc.Load(ctx, "u2")
	if err != nil {
		t.Fatalf("load u2: %v", err)
	}
	if len(other) != len(cat) {
		t.Fatalf("history must be per user: got %d want %d", len(other), len(cat))
	}
}
