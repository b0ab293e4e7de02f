package archiver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"time"
)

// Extractor produces the study summary for a source DICOM directory.
// Metadata extraction is performed by an external collaborator; the
// pipeline only consumes its result.
type Extractor interface {
	Extract(source string) (*Summary, error)
}

// ServiceExtractor obtains summaries from a metadata extraction service
// over HTTP. The service runs on the same host as the archiver, reads the
// directory named in the request, and returns the summary as JSON.
type ServiceExtractor struct {
	BaseURL string
	Client  *http.Client
}

// NewServiceExtractor returns an extractor for the service at baseURL.
func NewServiceExtractor(baseURL string) *ServiceExtractor {
	return &ServiceExtractor{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

// Extract requests the summary for the given source directory.
func (e *ServiceExtractor) Extract(source string) (*Summary, error) {

	var (
		summary  Summary
		absPath  string
		response *http.Response
		err      error
	)

	if absPath, err = filepath.Abs(source); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot resolve source path '%s'", source)
	}

	query := fmt.Sprintf("%s/summary?source=%s", e.BaseURL, url.QueryEscape(absPath))

	if response, err = e.Client.Get(query); err != nil {
		return nil, wrap(KindIOFailure, err, "error requesting summary from '%s'", e.BaseURL)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return nil, Errorf(KindIOFailure,
			"summary service returned status %d: %s", response.StatusCode, body)
	}

	if err = json.NewDecoder(response.Body).Decode(&summary); err != nil {
		return nil, wrap(KindIOFailure, err, "cannot decode summary response")
	}

	if summary.Info.StudyUID == "" {
		return nil, Errorf(KindIOFailure, "summary service returned no study UID for '%s'", source)
	}

	return &summary, nil
}
