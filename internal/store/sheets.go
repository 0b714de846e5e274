package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/oauth2/google"
)

const (
	sheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	sheetsScope   = "https://www.googleapis.com/auth/spreadsheets"

	// readRange covers every column the manifest and registries use.
	readRange = "A2:M"

	// appendRange is the Events row shape: date, times, names, notes.
	appendRange = "A:F"
)

// SheetsStore reads and appends spreadsheet tabs through the Google Sheets
// REST API, authenticated as a service account.
type SheetsStore struct {
	spreadsheetID string
	baseURL       string
	httpClient    *http.Client
}

// NewSheetsStore builds a store from service-account credentials JSON. The
// returned client refreshes its token automatically.
func NewSheetsStore(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*SheetsStore, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	return &SheetsStore{
		spreadsheetID: spreadsheetID,
		baseURL:       sheetsBaseURL,
		httpClient:    conf.Client(ctx),
	}, nil
}

// ReadRows fetches a tab's data rows. A tab the spreadsheet doesn't have
// yields no rows rather than an error, matching the "empty means no data"
// contract the pipeline relies on.
func (s *SheetsStore) ReadRows(ctx context.Context, tab string) ([][]string, error) {
	rng := url.PathEscape(fmt.Sprintf("%s!%s", tab, readRange))
	reqURL := fmt.Sprintf("%s/%s/values/%s", s.baseURL, s.spreadsheetID, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reading %s: %s", tab, readBody(resp))
	}

	var body struct {
		Values [][]any `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", tab, err)
	}

	rows := make([][]string, 0, len(body.Values))
	for _, raw := range body.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendRows appends rows after the tab's existing data in a single write,
// letting the spreadsheet interpret cell values as a user entry would.
func (s *SheetsStore) AppendRows(ctx context.Context, tab string, rows [][]string) error {
	rng := url.PathEscape(fmt.Sprintf("%s!%s", tab, appendRange))
	reqURL := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED", s.baseURL, s.spreadsheetID, rng)

	payload, err := json.Marshal(map[string]any{"values": rows})
	if err != nil {
		return fmt.Errorf("encoding rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("appending to %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("appending to %s: %s", tab, readBody(resp))
	}
	return nil
}

func readBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if err != nil || len(b) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, b)
}
