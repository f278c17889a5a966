package feed

import (
	"context"
	"testing"
	"time"

	"github.com/gomeet-app/backend/internal/domain/enums"
	"github.com/gomeet-app/backend/internal/domain/model"
	compatsvc "github.com/gomeet-app/backend/internal/services/compat"
)

type profileStoreStub struct {
	viewer     model.Profile
	candidates []model.Profile
}

func (s *profileStoreStub) GetByUserID(_ context.Context, _ int64) (model.Profile, error) {
	return s.viewer, nil
}

func (s *profileStoreStub) ListCandidates(_ context.Context, _ int64, _ int) ([]model.Profile, error) {
	return s.candidates, nil
}

type decidedStoreStub struct {
	decided map[int64]struct{}
}

func (s *decidedStoreStub) ListDecidedTargets(_ context.Context, _ int64) (map[int64]struct{}, error) {
	if s.decided == nil {
		return map[int64]struct{}{}, nil
	}
	return s.decided, nil
}

type signerStub struct {
	calls int
}

func (s *signerStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	s.calls++
	return "https://cdn.test/" + key, nil
}

func candidate(id int64, age int, interests []string) model.Profile {
	return model.Profile{
		UserID:       id,
		DisplayName:  "candidate",
		Age:          age,
		Gender:       "female",
		InterestedIn: enums.InterestedInMen,
		Interests:    interests,
		Approved:     true,
	}
}

func newFeedFixture(candidates []model.Profile, decided map[int64]struct{}) (*Service, *signerStub) {
	viewer := model.Profile{
		UserID:       7,
		Age:          30,
		Gender:       "male",
		InterestedIn: enums.InterestedInWomen,
		Interests:    []string{"hiking", "jazz"},
		Approved:     true,
	}

	signer := &signerStub{}
	svc := NewService(
		&profileStoreStub{viewer: viewer, candidates: candidates},
		&decidedStoreStub{decided: decided},
		compatsvc.NewScorer(),
		Config{PageSize: 20, MaxPageSize: 50},
		nil,
	)
	svc.AttachPhotoSigner(signer)
	return svc, signer
}

func TestBuildRanksByScore(t *testing.T) {
	closeAge := candidate(21, 31, []string{"hiking", "jazz"})
	farAge := candidate(22, 45, nil)
	svc, _ := newFeedFixture([]model.Profile{farAge, closeAge}, nil)

	cards, err := svc.Build(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected two cards, got %d", len(cards))
	}
	if cards[0].UserID != 21 {
		t.Fatalf("expected best scored candidate first, got %d", cards[0].UserID)
	}
	if cards[0].Compatibility.Score <= cards[1].Compatibility.Score {
		t.Fatalf("expected descending scores: %d then %d", cards[0].Compatibility.Score, cards[1].Compatibility.Score)
	}
}

func TestBuildFiltersDecidedAndIneligible(t *testing.T) {
	eligible := candidate(21, 31, nil)
	alreadyDecided := candidate(22, 31, nil)
	ineligible := candidate(23, 31, nil)
	ineligible.InterestedIn = enums.InterestedInWomen

	svc, _ := newFeedFixture(
		[]model.Profile{eligible, alreadyDecided, ineligible},
		map[int64]struct{}{22: {}},
	)

	cards, err := svc.Build(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cards) != 1 || cards[0].UserID != 21 {
		t.Fatalf("expected only the eligible undecided candidate, got %+v", cards)
	}
}

func TestBuildTiebreakIsStable(t *testing.T) {
	a := candidate(31, 31, nil)
	b := candidate(30, 31, nil)
	svc, _ := newFeedFixture([]model.Profile{a, b}, nil)

	cards, err := svc.Build(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cards) != 2 || cards[0].UserID != 30 {
		t.Fatalf("equal scores must order by user id, got %+v", cards)
	}
}

func TestBuildCapsPageSize(t *testing.T) {
	candidates := make([]model.Profile, 0, 60)
	for i := int64(0); i < 60; i++ {
		candidates = append(candidates, candidate(100+i, 31, nil))
	}
	svc, _ := newFeedFixture(candidates, nil)

	cards, err := svc.Build(context.Background(), 7, 500)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cards) != 50 {
		t.Fatalf("expected max page size cap of 50, got %d", len(cards))
	}
}

func TestBuildSignsPrimaryPhotos(t *testing.T) {
	withPhoto := candidate(21, 31, nil)
	withPhoto.PrimaryPhotoKey = "photos/21/primary.jpg"
	withoutPhoto := candidate(22, 45, nil)

	svc, signer := newFeedFixture([]model.Profile{withPhoto, withoutPhoto}, nil)

	cards, err := svc.Build(context.Background(), 7, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if signer.calls != 1 {
		t.Fatalf("expected one presign call, got %d", signer.calls)
	}
	if cards[0].PhotoURL != "https://cdn.test/photos/21/primary.jpg" {
		t.Fatalf("unexpected photo url: %q", cards[0].PhotoURL)
	}
	if cards[1].PhotoURL != "" {
		t.Fatalf("candidate without photo must have empty url, got %q", cards[1].PhotoURL)
	}
}
