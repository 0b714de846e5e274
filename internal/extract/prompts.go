package extract

import (
	"encoding/json"
	"fmt"
	"time"
)

// rulePrompt asks the model to parse human-authored scheduling notes into
// recurrence rules, one per venue, preserving raw time text for the
// deterministic parser.
func rulePrompt(sourceName, instructions string) string {
	return fmt.Sprintf(`You are a logic extractor. Parse the user's scheduling rules.
USER RULES: %q
TRUCK NAME: %q
CRITICAL INSTRUCTIONS:
1. Extract EACH venue separately.
2. Copy the EXACT time text you see into "rawTimeStart"/"rawTimeEnd".
3. Handle specific dates: if the text says "Mon 2nd", extract "2nd" into "pos".
4. "freq" is "weekly" or "monthly"; "day" is the lowercase weekday name.
Return a JSON object of the form:
{"rules": [{"venue": "The Railway Tavern", "proof": "Mon 2nd - The Railway Tavern", "rawTimeStart": "5pm", "rawTimeEnd": "7ish", "freq": "weekly", "day": "monday", "pos": "2nd"}]}`,
		instructions, sourceName)
}

// eventPrompt asks the model to extract concrete events from scraped page
// text, fuzzy-matching names against the canonical vocabularies.
func eventPrompt(sourceName, corpus string, trucks, venues []string) string {
	now := time.Now()
	truckJSON, _ := json.Marshal(trucks)
	venueJSON, _ := json.Marshal(venues)

	return fmt.Sprintf(`You are extracting food truck events for: %q.
Current Date: %s.
Current Year: %d.
TASK: Extract ALL upcoming food truck events from the provided text.
CRITICAL RULES:
1. DEEP SCAN: the text contains multiple days/months. Scan the ENTIRE text block.
2. TODAY/TOMORROW: if the text says "Tonight" or "Tomorrow", convert to dates based on Current Date.
3. DateStart MUST be "DD/MM/YYYY". Use the Current Year (%d) for all dates unless the website explicitly states otherwise. Do NOT use past years.
4. Missing info: if a truck name is in the text, use it. Default to %q.
5. Truck name fuzzy match: %s.
6. Venue name fuzzy match: %s.
Return a JSON object of the form:
{"events": [{"DateStart": "DD/MM/YYYY", "TimeStart": "HH:MM", "TimeEnd": "HH:MM", "Truck Name": "Name", "Venue Name": "Name", "Notes": "..."}]}
WEBSITE TEXT:
%s`,
		sourceName, now.Format("Mon Jan 2 2006"), now.Year(), now.Year(), sourceName, truckJSON, venueJSON, corpus)
}
