package profiles

import (
	"context"
	"testing"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	saved    *Profile
	photoFor string
	photoURL string
}

func (s *stubRepo) Get(ctx context.Context, id string) (*Profile, error) {
	if s.saved == nil || s.saved.ID != id {
		return nil, ErrNotFound
	}
	return s.saved, nil
}

func (s *stubRepo) Upsert(ctx context.Context, profile Profile) (*Profile, error) {
	s.saved = &profile
	return &profile, nil
}

func (s *stubRepo) SetPhotoURL(ctx context.Context, id string, url string) error {
	s.photoFor, s.photoURL = id, url
	return nil
}

func TestSaveNormalisesAndStores(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	identity := auth.Identity{ID: "user-1", Email: "sana@example.com"}

	profile, err := svc.Save(context.Background(), identity, SaveInput{
		FullName:      " <b>Sana</b> Khan ",
		Number:        "+91 98765 43210",
		InstaID:       "@GlowBySana",
		Gender:        "Female",
		TermsAccepted: true,
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", profile.ID)
	require.Equal(t, "sana@example.com", profile.Email)
	require.Equal(t, "Sana Khan", profile.FullName)
	require.Equal(t, "+919876543210", profile.Number)
	require.Equal(t, "glowbysana", profile.InstaID)
	require.Equal(t, "female", profile.Gender)

	got, err := svc.Get(context.Background(), identity)
	require.NoError(t, err)
	require.Equal(t, profile, got)
}

func TestSaveRejectsInvalidInput(t *testing.T) {
	svc := NewService(&stubRepo{})
	identity := auth.Identity{ID: "user-1"}

	tests := []struct {
		name  string
		input SaveInput
	}{
		{name: "missing name", input: SaveInput{Number: "9876543210", TermsAccepted: true}},
		{name: "missing number", input: SaveInput{FullName: "Sana", TermsAccepted: true}},
		{name: "terms not accepted", input: SaveInput{FullName: "Sana", Number: "9876543210"}},
		{name: "bad gender", input: SaveInput{FullName: "Sana", Number: "9876543210", Gender: "x", TermsAccepted: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(context.Background(), identity, tt.input)
			require.ErrorIs(t, err, ErrInvalidProfile)
		})
	}
}

func TestSetPhotoURL(t *testing.T) {
	repo := &stubRepo{}
	require.NoError(t, NewService(repo).SetPhotoURL(context.Background(), "user-1", "https://cdn/x.jpg"))
	require.Equal(t, "user-1", repo.photoFor)
	require.Equal(t, "https://cdn/x.jpg", repo.photoURL)
}
