package symbols

import "testing"

func TestParseList(t *testing.T) {
	got := ParseList(" reliance, TCS ,tcs,, INFY ")
	want := []string{"RELIANCE", "TCS", "INFY"}

	if len(got) != len(want) {
		t.Fatalf("ParseList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseList()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestForMarket(t *testing.T) {
	india := ForMarket("india")
	if len(india) == 0 {
		t.Fatal("india universe is empty")
	}
	usa := ForMarket("USA")
	if len(usa) == 0 {
		t.Fatal("usa universe is empty")
	}
	if units := ForMarket("korea"); units != nil {
		t.Errorf("unknown market = %v, want nil", units)
	}
}

func TestIndiaUniverseDeduplicated(t *testing.T) {
	// Nifty 100 and Midcap 150 overlap on a few names; the merged universe
	// must list each symbol once.
	syms := GetUniverse(UniverseIndia)
	seen := make(map[string]bool, len(syms))
	for _, s := range syms {
		if seen[s] {
			t.Errorf("duplicate symbol %s in india universe", s)
		}
		seen[s] = true
	}
	if len(syms) < 200 {
		t.Errorf("india universe has %d symbols, expected the merged Nifty 100 + Midcap 150 set", len(syms))
	}
}

func TestUSAUniverseSize(t *testing.T) {
	if n := len(GetUniverse(UniverseUSA)); n != 100 {
		t.Errorf("usa universe has %d symbols, want 100", n)
	}
}
