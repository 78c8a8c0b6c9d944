package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	events   map[string]Event
	sessions map[string][]Session
	saved    *SaveParams
}

func (s *stubRepo) List(ctx context.Context, includeSessions bool) ([]Event, error) {
	out := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if includeSessions {
			e.Sessions = s.sessions[e.ID]
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (s *stubRepo) ListSessions(ctx context.Context, eventID string) ([]Session, error) {
	return s.sessions[eventID], nil
}

func (s *stubRepo) GetSession(ctx context.Context, eventID, sessionID string) (*Session, error) {
	for _, sess := range s.sessions[eventID] {
		if sess.ID == sessionID {
			return &sess, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (s *stubRepo) Save(ctx context.Context, params SaveParams) (SaveResult, error) {
	s.saved = &params
	return SaveResult{Event: params.Event, Sessions: params.Sessions, Linked: len(params.Sessions)}, nil
}

const templateID = "3b0c7a9e-2f1d-4c5b-9a8e-7d6c5b4a3f21"

func validInput() SaveInput {
	start := time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)
	return SaveInput{
		Name:             "Bridal Masterclass",
		Venue:            "Taj Krishna",
		StartTime:        start,
		EndTime:          start.Add(8 * time.Hour),
		IDCardTemplateID: templateID,
		Sessions: []SessionInput{
			{Name: "HD Base", StartTime: start, EndTime: start.Add(2 * time.Hour)},
		},
	}
}

func TestSaveAppliesDefaults(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	result, err := svc.Save(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 1, result.Linked)
	require.NotNil(t, repo.saved)
	require.Equal(t, DefaultLocation, repo.saved.Event.Location)
	require.Equal(t, templateID, repo.saved.IDCardTemplateID)
	require.Equal(t, DefaultSessionImage, repo.saved.Sessions[0].ImageURL)
	require.Equal(t, DefaultCurrency, repo.saved.Sessions[0].Currency)
	require.Nil(t, repo.saved.Sessions[0].Cost)
}

func TestSaveRejectsInvalid(t *testing.T) {
	svc := NewService(&stubRepo{})

	tests := []struct {
		name   string
		mutate func(*SaveInput)
	}{
		{name: "missing name", mutate: func(in *SaveInput) { in.Name = "" }},
		{name: "missing template", mutate: func(in *SaveInput) { in.IDCardTemplateID = "" }},
		{name: "ends before start", mutate: func(in *SaveInput) { in.EndTime = in.StartTime.Add(-time.Hour) }},
		{name: "session without times", mutate: func(in *SaveInput) { in.Sessions[0].EndTime = time.Time{} }},
		{name: "negative cost", mutate: func(in *SaveInput) {
			cost := -10.0
			in.Sessions[0].Cost = &cost
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := svc.Save(context.Background(), input)
			require.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestSessionsRequiresEvent(t *testing.T) {
	repo := &stubRepo{
		events:   map[string]Event{"e1": {ID: "e1", Name: "Expo"}},
		sessions: map[string][]Session{"e1": {{ID: "s1", EventID: "e1"}}},
	}
	svc := NewService(repo)

	sessions, err := svc.Sessions(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	_, err = svc.Sessions(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionPaid(t *testing.T) {
	zero, fee := 0.0, 2500.0
	require.False(t, Session{}.Paid())
	require.False(t, Session{Cost: &zero}.Paid())
	require.True(t, Session{Cost: &fee}.Paid())
}
