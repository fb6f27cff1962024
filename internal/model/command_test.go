package model

import (
	"errors"
	"testing"
	"time"
)

func TestApplySetField(t *testing.T) {
	for _, tc := range []struct {
		name  string
		field string
		value string
		check func(SearchParams) bool
	}{
		{"scalar", FieldActorType, "user", func(p SearchParams) bool { return p.ActorType == "user" }},
		{"entity alias", FieldEntity, "org/x", func(p SearchParams) bool { return p.EntityRef == "org/x" }},
		{"boolean", FieldHasAttachment, "true", func(p SearchParams) bool { return p.HasAttachment }},
		{"free text", FieldQuery, "login", func(p SearchParams) bool { return p.Query == "login" }},
		{"custom", "source.ip", "10.0.0.1", func(p SearchParams) bool { return p.Source["ip"] == "10.0.0.1" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			next, err := Apply(SearchParams{}, SetField{Name: tc.field, Value: tc.value})
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !tc.check(next) {
				t.Errorf("field %q not applied: %+v", tc.field, next)
			}
		})
	}
}

func TestApplySetFieldUnknownName(t *testing.T) {
	_, err := Apply(SearchParams{}, SetField{Name: "noSuchField", Value: "x"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	p := SearchParams{ActorExtra: map[string]string{"team": "platform"}}
	next, err := Apply(p, SetField{Name: "actor.team", Value: "infra"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.ActorExtra["team"] != "platform" {
		t.Error("Apply mutated its input")
	}
	if next.ActorExtra["team"] != "infra" {
		t.Errorf("next = %+v", next.ActorExtra)
	}
}

func TestApplySetRange(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next, err := Apply(SearchParams{}, SetRange{Since: &since})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next.Since == nil || !next.Since.Equal(since) || next.Until != nil {
		t.Errorf("range not applied: %+v", next)
	}
}

func TestApplyResetParams(t *testing.T) {
	next, err := Apply(sampleParams(), ResetParams{Params: SearchParams{ActorType: "token"}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !next.Equal(SearchParams{ActorType: "token"}) {
		t.Errorf("reset produced %+v", next)
	}
}

func TestApplyRemoveField(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(time.Hour)
	base := SearchParams{
		ActorType:     "user",
		EntityRef:     "org/x",
		HasAttachment: true,
		Since:         &since,
		Until:         &until,
		ResourceExtra: map[string]string{"owner": "ops", "region": "eu"},
	}

	t.Run("date clears both bounds", func(t *testing.T) {
		next, err := Apply(base, RemoveField{Name: FieldSavedAt})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if next.Since != nil || next.Until != nil {
			t.Errorf("bounds survived removal: %+v", next)
		}
	})

	t.Run("namespace member removal leaves siblings", func(t *testing.T) {
		next, err := Apply(base, RemoveField{Name: "resource.owner"})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if _, ok := next.ResourceExtra["owner"]; ok {
			t.Error("owner key survived removal")
		}
		if next.ResourceExtra["region"] != "eu" {
			t.Errorf("sibling custom field touched: %+v", next.ResourceExtra)
		}
	})

	t.Run("entity alias clears entityRef", func(t *testing.T) {
		next, err := Apply(base, RemoveField{Name: FieldEntity})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if next.EntityRef != "" {
			t.Errorf("entityRef = %q after removal", next.EntityRef)
		}
	})

	t.Run("boolean reset", func(t *testing.T) {
		next, err := Apply(base, RemoveField{Name: FieldHasAttachment})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if next.HasAttachment {
			t.Error("hasAttachment survived removal")
		}
	})

	t.Run("unknown name fails loudly", func(t *testing.T) {
		_, err := Apply(base, RemoveField{Name: "notAField"})
		if !errors.Is(err, ErrUnknownField) {
			t.Errorf("expected ErrUnknownField, got %v", err)
		}
	})
}

func TestActiveFieldNames(t *testing.T) {
	p := SearchParams{
		ActorType: "user",
		Since:     timePtr(time.Now()),
		Details:   map[string]string{"reason": "x"},
	}
	got := make(map[string]bool)
	for _, n := range p.ActiveFieldNames() {
		got[n] = true
	}
	for _, want := range []string{FieldActorType, FieldSavedAt, "details.reason"} {
		if !got[want] {
			t.Errorf("missing active field %q in %v", want, got)
		}
	}
	if len(got) != 3 {
		t.Errorf("unexpected extra active fields: %v", got)
	}
}
