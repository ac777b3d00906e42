package effect

import (
	"math"
	"testing"
)

func TestMitigate(t *testing.T) {
	cases := []struct {
		name   string
		raw    float64
		resist float64
		want   float64
	}{
		{name: "zero resist passes through", raw: 40, resist: 0, want: 40},
		{name: "hundred resist halves", raw: 40, resist: 100, want: 20},
		{name: "negative resist treated as zero", raw: 40, resist: -50, want: 40},
		{name: "zero raw", raw: 0, resist: 75, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Mitigate(tc.raw, tc.resist)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Mitigate(%v, %v) = %v, want %v", tc.raw, tc.resist, got, tc.want)
			}
		})
	}
}

func TestMitigateStrictlyDecreasing(t *testing.T) {
	previous := math.Inf(1)
	for resist := 0.0; resist <= 500; resist += 25 {
		got := Mitigate(80, resist)
		if got >= previous {
			t.Fatalf("Mitigate(80, %v) = %v, expected strictly less than %v", resist, got, previous)
		}
		previous = got
	}
}

func TestMitigatedAmountBothSplitsAsymmetrically(t *testing.T) {
	// 20 raw, phys resist 0, mag resist 100: 10×1 + 10×0.5 = 15.
	got := MitigatedAmount(20, DamageBoth, 0, 100)
	if math.Abs(got-15) > 1e-9 {
		t.Fatalf("MitigatedAmount(20, both, 0, 100) = %v, want 15", got)
	}

	// Swapping the resistances must yield the same total for an even split.
	swapped := MitigatedAmount(20, DamageBoth, 100, 0)
	if math.Abs(swapped-got) > 1e-9 {
		t.Fatalf("swapped resistances: got %v, want %v", swapped, got)
	}
}

func TestMitigatedAmountSingleChannels(t *testing.T) {
	if got := MitigatedAmount(14, DamagePhysical, 20, 999); math.Abs(got-14*100.0/120) > 1e-9 {
		t.Fatalf("physical amount = %v, want %v", got, 14*100.0/120)
	}
	if got := MitigatedAmount(14, DamageMagical, 999, 20); math.Abs(got-14*100.0/120) > 1e-9 {
		t.Fatalf("magical amount = %v, want %v", got, 14*100.0/120)
	}
	if got := MitigatedAmount(14, DamageKind("bogus"), 0, 0); got != 0 {
		t.Fatalf("unknown kind amount = %v, want 0", got)
	}
}

func TestChannelsImmune(t *testing.T) {
	cases := []struct {
		name     string
		channels Channels
		kind     DamageKind
		want     bool
	}{
		{name: "empty blocks nothing", channels: Channels{}, kind: DamagePhysical, want: false},
		{name: "physical channel blocks physical", channels: Channels{Physical: 1}, kind: DamagePhysical, want: true},
		{name: "physical channel ignores magical", channels: Channels{Physical: 1}, kind: DamageMagical, want: false},
		{name: "both channel blocks physical", channels: Channels{Both: 0.5}, kind: DamagePhysical, want: true},
		{name: "both channel blocks both", channels: Channels{Both: 0.5}, kind: DamageBoth, want: true},
		{name: "single channel does not block both", channels: Channels{Physical: 2}, kind: DamageBoth, want: false},
		{name: "paired singles block both", channels: Channels{Physical: 2, Magical: 1}, kind: DamageBoth, want: true},
		{name: "expired timer blocks nothing", channels: Channels{Physical: -0.2}, kind: DamagePhysical, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.channels.Immune(tc.kind); got != tc.want {
				t.Fatalf("Immune(%q) = %v, want %v", tc.kind, got, tc.want)
			}
		})
	}
}

func TestChannelsGrantKeepsLongerTimer(t *testing.T) {
	var c Channels
	c.Grant(DamageMagical, 3)
	c.Grant(DamageMagical, 1.5)
	if c.Magical != 3 {
		t.Fatalf("Magical = %v, want 3 after shorter regrant", c.Magical)
	}
	c.Grant(DamageMagical, 4)
	if c.Magical != 4 {
		t.Fatalf("Magical = %v, want 4 after longer regrant", c.Magical)
	}
}

func TestChannelsDecay(t *testing.T) {
	c := Channels{Physical: 1, Magical: 0.25, Both: 0}
	c.Decay(0.5)
	if c.Physical != 0.5 {
		t.Fatalf("Physical = %v, want 0.5", c.Physical)
	}
	if c.Magical != -0.25 {
		t.Fatalf("Magical = %v, want -0.25 (transient negatives allowed)", c.Magical)
	}
	if c.Immune(DamageMagical) {
		t.Fatal("expected lapsed magical immunity to stop blocking")
	}
}
