package conversation

import (
	"testing"
	"time"
)

func validCenterChoiceSession() *Session {
	now := time.Now().UTC()
	return &Session{
		Phone:         "+15551230001",
		VehicleID:     "Tata_V11",
		Issue:         "Engine overheating",
		UserID:        "user-1",
		State:         StateAwaitingCenterChoice,
		CenterOptions: map[string]string{"1": "center-a", "2": "center-b"},
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}

func TestSessionValidate(t *testing.T) {
	t.Run("valid center choice", func(t *testing.T) {
		if err := validCenterChoiceSession().Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
	})

	t.Run("valid time choice", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.State = StateAwaitingTimeChoice
		s.CenterOptions = nil
		s.SelectedCenterID = "center-a"
		if err := s.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
	})

	t.Run("center choice without options", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.CenterOptions = nil
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("too many options", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.CenterOptions = map[string]string{
			"1": "a", "2": "b", "3": "c", "4": "d", "5": "e", "6": "f",
		}
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("time choice without selected center", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.State = StateAwaitingTimeChoice
		s.CenterOptions = nil
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("unknown state", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.State = State("DONE")
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})

	t.Run("missing phone", func(t *testing.T) {
		s := validCenterChoiceSession()
		s.Phone = ""
		if err := s.Validate(); err == nil {
			t.Fatal("expected validation error")
		}
	})
}
