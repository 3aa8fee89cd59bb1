package letter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ReadRequests parses a CSV whose header row uses the web form's field names
// (lang, civilite, prenom, nom, ...). Each following row is one Request.
// Rows are validated; the first invalid row aborts with its line number.
func ReadRequests(r io.Reader) ([]Request, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	var out []Request
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)

		values := url.Values{}
		for j, cell := range record {
			if j < len(headers) && headers[j] != "" {
				values.Set(headers[j], cell)
			}
		}
		if isBlank(values) {
			continue
		}
		req := FromValues(values)
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, req)
	}
	return out, nil
}

func isBlank(v url.Values) bool {
	for _, vals := range v {
		for _, s := range vals {
			if strings.TrimSpace(s) != "" {
				return false
			}
		}
	}
	return true
}
