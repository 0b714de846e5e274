package source

import "testing"

func truckRow(name, url, instructions, strategy string) []string {
	row := make([]string, 12)
	row[0] = name
	row[4] = url
	row[10] = instructions
	row[11] = strategy
	return row
}

func venueRow(name, url, instructions, strategy string) []string {
	row := make([]string, 12)
	row[0] = name
	row[9] = url
	row[10] = instructions
	row[11] = strategy
	return row
}

func TestFromRows(t *testing.T) {
	trucks := [][]string{
		truckRow("Scrapeable Truck", "https://truck.example", "", "click_next"),
		truckRow("Manual Truck", "", "every friday at The Pub from 5pm", "manual"),
		truckRow("No Data Truck", "", "short", ""),
		truckRow("Untyped Truck", "http://truck2.example", "", ""),
	}
	venues := [][]string{
		venueRow("Scrapeable Venue", "https://venue.example", "", "frames"),
		venueRow("Instruction Only Venue", "", "every friday at The Pub from 5pm", ""),
	}

	sources := FromRows(trucks, venues)
	if len(sources) != 4 {
		t.Fatalf("got %d sources, want 4: %+v", len(sources), sources)
	}

	if sources[0].Name != "Scrapeable Truck" || sources[0].Strategy != "click_next" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}

	manual := sources[1]
	if manual.URL != "about:blank" {
		t.Errorf("instruction-only source URL = %q, want about:blank", manual.URL)
	}
	if !manual.HasInstructions() {
		t.Error("instruction-only source should report usable instructions")
	}

	if sources[2].Strategy != DefaultStrategyKey {
		t.Errorf("missing strategy key = %q, want %q", sources[2].Strategy, DefaultStrategyKey)
	}

	// Venue rows need a URL; instructions alone are not enough.
	if sources[3].Name != "Scrapeable Venue" {
		t.Errorf("unexpected venue source: %+v", sources[3])
	}
}

func TestFromRowsShortRows(t *testing.T) {
	// Rows shorter than the strategy column must not panic.
	trucks := [][]string{{"Truck", "", "", "", "https://t.example"}}
	sources := FromRows(trucks, nil)
	if len(sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(sources))
	}
	if sources[0].Strategy != DefaultStrategyKey {
		t.Errorf("strategy = %q, want default", sources[0].Strategy)
	}
}
