package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"

	"github.com/easeaico/companion-house/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, sqlite.Open(":memory:"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := store.DB().DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every pooled connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	if err := store.AutoMigrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestCreateAndGetCharacter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	stats := types.Stats{Love: 40, Happiness: 60, Willing: 20, SelfEsteem: 50, Loyalty: 30, Fight: 10, Stamina: 80, Level: 2}
	in := types.Character{
		ID:          "luna-1",
		Name:        "Luna",
		Personality: "playful",
		Stats:       &stats,
		Memories: []types.CharacterMemory{
			{ID: "m1", Category: types.MemoryPersonal, Content: "likes rain", Importance: types.ImportanceHigh},
		},
	}
	if err := store.Characters.CreateCharacter(ctx, "house-1", &in); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}

	got, err := store.Characters.GetCharacter(ctx, "luna-1")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if got.Name != "Luna" || got.Personality != "playful" {
		t.Fatalf("unexpected character: %+v", got)
	}
	if diff := cmp.Diff(stats, *got.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if len(got.Memories) != 1 || got.Memories[0].Content != "likes rain" {
		t.Fatalf("unexpected memories: %+v", got.Memories)
	}
	if got.ConversationHistory == nil {
		t.Fatalf("expected empty, non-nil conversation history")
	}
	if got.Progression != nil || got.Skills != nil {
		t.Fatalf("expected absent blocks to stay absent")
	}
}

func TestCreateCharacterRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Characters.CreateCharacter(ctx, "house-1", &types.Character{ID: "a", Name: "Luna"}); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	err := store.Characters.CreateCharacter(ctx, "house-1", &types.Character{ID: "a", Name: "Mira"})
	if !errors.Is(err, types.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	err = store.Characters.CreateCharacter(ctx, "house-1", &types.Character{ID: "b", Name: "  LUNA "})
	if !errors.Is(err, types.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if err := store.Characters.CreateCharacter(ctx, "house-2", &types.Character{ID: "c", Name: "Luna"}); err != nil {
		t.Fatalf("same name in another house should be allowed: %v", err)
	}
}

func TestCreateCharacterAssignsID(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.Characters.newID = func() string { return "generated" }

	c := types.Character{Name: "Nova"}
	if err := store.Characters.CreateCharacter(ctx, "", &c); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	if c.ID != "generated" || c.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps to be assigned, got %+v", c)
	}
}

func TestGetCharacterBackfillsLegacyStats(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	row := characterModel{
		ID:       "legacy",
		Name:     "Old",
		NameKey:  "old",
		Stats:    datatypes.JSON(`{"love": 250}`),
		Memories: datatypes.JSON(`[]`),
	}
	if err := store.DB().Create(&row).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.Characters.GetCharacter(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if got.Stats.Love != 100 {
		t.Fatalf("expected love clamped to 100, got %d", got.Stats.Love)
	}
	if got.Stats.Happiness != 50 || got.Stats.Stamina != 50 {
		t.Fatalf("expected defaults for missing stats, got %+v", got.Stats)
	}
}

func TestGetCharacterNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Characters.GetCharacter(context.Background(), "missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCharacterKeepsHouse(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c := types.Character{ID: "a", Name: "Luna"}
	if err := store.Characters.CreateCharacter(ctx, "house-1", &c); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	prog := types.Progression{Affection: 70, Trust: 60}
	c.Progression = &prog
	c.Description = "updated"
	if err := store.Characters.UpdateCharacter(ctx, &c); err != nil {
		t.Fatalf("UpdateCharacter: %v", err)
	}

	roster, err := store.Characters.ListCharacters(ctx, "house-1")
	if err != nil {
		t.Fatalf("ListCharacters: %v", err)
	}
	if len(roster) != 1 || roster[0].Description != "updated" {
		t.Fatalf("unexpected roster: %+v", roster)
	}
	if roster[0].Progression == nil || roster[0].Progression.Affection != 70 {
		t.Fatalf("expected progression to be stored, got %+v", roster[0].Progression)
	}
	if roster[0].Progression.Kinks == nil {
		t.Fatalf("expected progression to be backfilled on read")
	}

	err = store.Characters.UpdateCharacter(ctx, &types.Character{ID: "missing", Name: "x"})
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCharacter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Characters.CreateCharacter(ctx, "", &types.Character{ID: "a", Name: "Luna"}); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	if err := store.Characters.DeleteCharacter(ctx, "a"); err != nil {
		t.Fatalf("DeleteCharacter: %v", err)
	}
	if err := store.Characters.DeleteCharacter(ctx, "a"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	in := types.ChatSession{
		ID:           "s1",
		Kind:         types.SessionGroup,
		Participants: []string{"a", "b"},
		Messages: []types.Message{
			{ID: "m1", Role: types.RoleUser, Content: "hi", Timestamp: base},
			{ID: "m2", SenderID: "a", Role: types.RoleAssistant, Content: "hello", Timestamp: base.Add(time.Minute)},
		},
		StatChanges: map[string]types.StatDelta{"a": {Love: 3}},
		CreatedAt:   base,
		UpdatedAt:   base.Add(time.Minute),
	}
	if err := store.Sessions.SaveSession(ctx, &in); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	older := types.ChatSession{ID: "s0", Kind: types.SessionIndividual, CreatedAt: base, UpdatedAt: base.Add(-time.Hour)}
	if err := store.Sessions.SaveSession(ctx, &older); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}

	got, err := store.Sessions.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if diff := cmp.Diff(in.Participants, got.Participants); diff != "" {
		t.Fatalf("participants mismatch (-want +got):\n%s", diff)
	}
	if len(got.Messages) != 2 || got.Messages[1].SenderID != "a" || got.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.StatChanges["a"].Love != 3 {
		t.Fatalf("unexpected stat changes: %+v", got.StatChanges)
	}

	all, err := store.Sessions.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(all) != 2 || all[0].ID != "s1" || all[1].ID != "s0" {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[1].Messages == nil || all[1].Participants == nil {
		t.Fatalf("expected empty slices for an empty session")
	}

	if _, err := store.Sessions.GetSession(ctx, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHouseApplyCleanup(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	house := types.House{
		ID:    "h1",
		Name:  "Villa",
		Rooms: []types.Room{{ID: "r1", Name: "Loft", Residents: []string{"a", "b"}}},
	}
	if err := store.Houses.CreateHouse(ctx, &house); err != nil {
		t.Fatalf("CreateHouse: %v", err)
	}
	for _, c := range []types.Character{{ID: "a", Name: "Luna"}, {ID: "b", Name: "Mira"}} {
		if err := store.Characters.CreateCharacter(ctx, "h1", &c); err != nil {
			t.Fatalf("CreateCharacter: %v", err)
		}
	}
	if err := store.Characters.CreateCharacter(ctx, "h2", &types.Character{ID: "c", Name: "Luna"}); err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}

	loaded, err := store.Houses.GetHouse(ctx, "h1")
	if err != nil {
		t.Fatalf("GetHouse: %v", err)
	}
	if len(loaded.Characters) != 2 {
		t.Fatalf("expected 2 residents, got %d", len(loaded.Characters))
	}

	loaded.Rooms[0].Residents = []string{"a"}
	// c belongs to another house and must survive
	if err := store.Houses.ApplyCleanup(ctx, loaded, []string{"b", "c"}); err != nil {
		t.Fatalf("ApplyCleanup: %v", err)
	}

	after, err := store.Houses.GetHouse(ctx, "h1")
	if err != nil {
		t.Fatalf("GetHouse: %v", err)
	}
	if len(after.Characters) != 1 || after.Characters[0].ID != "a" {
		t.Fatalf("unexpected roster after cleanup: %+v", after.Characters)
	}
	if diff := cmp.Diff([]string{"a"}, after.Rooms[0].Residents); diff != "" {
		t.Fatalf("rooms mismatch (-want +got):\n%s", diff)
	}
	if _, err := store.Characters.GetCharacter(ctx, "c"); err != nil {
		t.Fatalf("character in another house was removed: %v", err)
	}

	if err := store.Houses.ApplyCleanup(ctx, &types.House{ID: "missing"}, nil); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummariesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"s1", "s2", "s3", "s4"} {
		summary := types.ConversationSummary{
			ID:           id,
			SessionID:    "session",
			CharacterID:  "a",
			Summary:      "summary " + id,
			KeyTopics:    []string{"rain"},
			MessageCount: i + 3,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.Summaries.SaveSummary(ctx, &summary); err != nil {
			t.Fatalf("SaveSummary: %v", err)
		}
	}
	other := types.ConversationSummary{ID: "x", CharacterID: "b", Summary: "other", CreatedAt: base}
	if err := store.Summaries.SaveSummary(ctx, &other); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, err := store.Summaries.ListSummaries(ctx, "a", 3)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	var ids []string
	for _, s := range got {
		ids = append(ids, s.ID)
	}
	if diff := cmp.Diff([]string{"s4", "s3", "s2"}, ids); diff != "" {
		t.Fatalf("summary order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"rain"}, got[0].KeyTopics); diff != "" {
		t.Fatalf("key topics mismatch (-want +got):\n%s", diff)
	}
}

func TestHasSummary(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	summary := types.ConversationSummary{ID: "s1", SessionID: "g1", CharacterID: "luna", Summary: "walk", CreatedAt: time.Now()}
	if err := store.Summaries.SaveSummary(ctx, &summary); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	cases := []struct {
		session, character string
		want               bool
	}{
		{"g1", "luna", true},
		{"g1", "aria", false},
		{"g2", "luna", false},
	}
	for _, tc := range cases {
		got, err := store.Summaries.HasSummary(ctx, tc.session, tc.character)
		if err != nil {
			t.Fatalf("HasSummary: %v", err)
		}
		if got != tc.want {
			t.Fatalf("HasSummary(%s, %s) = %v, want %v", tc.session, tc.character, got, tc.want)
		}
	}
}
