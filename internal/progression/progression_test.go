package progression

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/easeaico/companion-house/internal/types"
)

func TestClampProperties(t *testing.T) {
	for _, n := range []int{-1000, -1, 0, 1, 50, 99, 100, 101, 1 << 20} {
		got := ClampStat(n)
		if got < StatMin || got > StatMax {
			t.Fatalf("ClampStat(%d) = %d out of range", n, got)
		}
		if n >= StatMin && n <= StatMax && got != n {
			t.Fatalf("ClampStat(%d) = %d, expected identity", n, got)
		}
		if ClampStat(got) != got {
			t.Fatalf("ClampStat not idempotent for %d", n)
		}
	}
}

func TestEnsureStatsDefaults(t *testing.T) {
	got := EnsureStats(nil)
	want := types.Stats{
		Love: 0, Happiness: 50, Wet: 0, Willing: 50, SelfEsteem: 50, Loyalty: 50,
		Fight: 20, Stamina: 50, Pain: 20, Experience: 0, Level: 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected defaults (-want +got):\n%s", diff)
	}
}

func TestEnsureStatsPartialAndClamp(t *testing.T) {
	got := EnsureStats(&types.PartialStats{
		Love:       types.IntPtr(150),
		Pain:       types.IntPtr(-4),
		Experience: types.IntPtr(420),
	})
	if got.Love != 100 || got.Pain != 0 {
		t.Fatalf("expected clamped love/pain, got %#v", got)
	}
	if got.Experience != 420 || got.Level != 1 {
		t.Fatalf("unbounded fields should pass through, got %#v", got)
	}
	if got.Happiness != DefaultHappiness {
		t.Fatalf("missing field should default, got %d", got.Happiness)
	}
}

func TestEnsureStatsIdempotent(t *testing.T) {
	first := EnsureStats(&types.PartialStats{Wet: types.IntPtr(300), Loyalty: types.IntPtr(12)})
	p := first.Partial()
	second := EnsureStats(&p)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("EnsureStats not idempotent (-first +second):\n%s", diff)
	}
}

func TestApplyStatsPatch(t *testing.T) {
	base := EnsureStats(nil)
	got := ApplyStatsPatch(base, types.PartialStats{Love: types.IntPtr(120), Fight: types.IntPtr(5)})
	if got.Love != 100 || got.Fight != 5 || got.Happiness != base.Happiness {
		t.Fatalf("unexpected patch result: %#v", got)
	}
}

func TestEnsureSkills(t *testing.T) {
	if got := EnsureSkills(nil); got != (types.Skills{}) {
		t.Fatalf("expected zero skills, got %#v", got)
	}
	got := EnsureSkills(&types.Skills{Hands: 140, Mouth: -3, Doggy: 40})
	if got.Hands != 100 || got.Mouth != 0 || got.Doggy != 40 {
		t.Fatalf("unexpected skills: %#v", got)
	}
}

func TestStatusForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  types.RelationshipStatus
	}{
		{95, types.StatusDevoted},
		{90, types.StatusDevoted},
		{89.9, types.StatusLover},
		{80, types.StatusLover},
		{75, types.StatusLover},
		{60, types.StatusCloseFriend},
		{55, types.StatusCloseFriend},
		{40, types.StatusAcquaintance},
		{30, types.StatusAcquaintance},
		{29.99, types.StatusStranger},
		{10, types.StatusStranger},
	}
	for _, tc := range cases {
		if got := StatusForScore(tc.score); got != tc.want {
			t.Fatalf("StatusForScore(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestEnsureProgressionDefaults(t *testing.T) {
	got := EnsureProgression(nil)
	if got.Kinks == nil || got.SignificantEvents == nil || got.StoryChronicle == nil || got.SexualMilestones == nil {
		t.Fatalf("expected empty, non-nil collections: %#v", got)
	}
	if got.Bonds == nil || got.UserPreferences.Likes == nil || got.SexualCompatibility.Conflicts == nil {
		t.Fatalf("expected empty nested shapes: %#v", got)
	}
	if got.RelationshipStatus != types.StatusStranger {
		t.Fatalf("expected stranger, got %s", got.RelationshipStatus)
	}
}

func TestEnsureProgressionClampsAndDerives(t *testing.T) {
	in := &types.Progression{
		Affection:          130,
		Trust:              90,
		Intimacy:           80,
		Jealousy:           -5,
		SexualExperience:   -2,
		RelationshipStatus: types.StatusStranger,
		Kinks:              []string{"praise"},
	}
	got := EnsureProgression(in)
	if got.Affection != 100 || got.Jealousy != 0 || got.SexualExperience != 0 {
		t.Fatalf("unexpected clamp: %#v", got)
	}
	if got.RelationshipStatus != types.StatusDevoted {
		t.Fatalf("expected devoted, got %s", got.RelationshipStatus)
	}
	if in.Affection != 130 {
		t.Fatalf("input must not be modified")
	}

	again := EnsureProgression(&got)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Fatalf("EnsureProgression not idempotent (-first +second):\n%s", diff)
	}
}

func TestApplyRelationshipUpdate(t *testing.T) {
	p := EnsureProgression(&types.Progression{Affection: 40, Trust: 40, SexualExperience: 3})
	ApplyRelationshipUpdate(&p, types.RelationshipUpdate{
		Affection:        types.IntPtr(150),
		SexualExperience: types.IntPtr(1),
	})
	if p.Affection != 100 || p.Trust != 40 {
		t.Fatalf("unexpected metrics: %#v", p)
	}
	if p.SexualExperience != 3 {
		t.Fatalf("sexual experience must not decrease, got %d", p.SexualExperience)
	}
}

func TestDefaultMilestones(t *testing.T) {
	got := DefaultMilestones()
	ids := make([]string, 0, len(got))
	for _, m := range got {
		if m.Achieved || m.AchievedAt != nil {
			t.Fatalf("seed milestone %s should not be achieved", m.ID)
		}
		ids = append(ids, m.ID)
	}
	want := []string{MilestoneFirstKiss, MilestoneFirstIntimateTouch, MilestoneFirstTime}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("unexpected milestone ids (-want +got):\n%s", diff)
	}
}

func TestMilestoneMet(t *testing.T) {
	kiss := DefaultMilestones()[0]
	stats := EnsureStats(nil)
	if MilestoneMet(kiss, stats, types.Progression{Affection: 29, Trust: 50}) {
		t.Fatalf("first kiss should need affection 30")
	}
	if !MilestoneMet(kiss, stats, types.Progression{Affection: 30, Trust: 25}) {
		t.Fatalf("first kiss should be met at its thresholds")
	}
	unknown := types.SexualMilestone{RequiredStats: map[string]int{"charisma": 1}}
	if MilestoneMet(unknown, stats, types.Progression{}) {
		t.Fatalf("unknown stat names should never match")
	}
}

func TestAddTag(t *testing.T) {
	tags := AddTag(nil, "beach")
	tags = AddTag(tags, "beach")
	tags = AddTag(tags, "")
	if diff := cmp.Diff([]string{"beach"}, tags); diff != "" {
		t.Fatalf("unexpected tags (-want +got):\n%s", diff)
	}
}
