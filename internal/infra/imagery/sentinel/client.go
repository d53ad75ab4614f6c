package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/imagery"
)

const defaultTimeout = 60 * time.Second

// Client adapter ke layanan export citra Sentinel-2.
// Service remote yang berat: submit export job, lalu poll status.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type exportRequest struct {
	Polygon   [][]float64 `json:"polygon"`
	StartDate string      `json:"start_date"`
	EndDate   string      `json:"end_date"`
	Folder    string      `json:"folder"`
}

type exportTask struct {
	JobID           string  `json:"job_id"`
	Date            string  `json:"date"`
	Filename        string  `json:"filename"`
	CloudPercentage float64 `json:"cloud_percentage"`
}

type exportResponse struct {
	Tasks []exportTask `json:"tasks"`
}

type statusResponse struct {
	State string `json:"state"`
}

// CreateExportTasks submit export job untuk polygon + rentang tanggal.
// Provider membagi rentang jadi satu task per tanggal citra yang tersedia.
func (c *Client) CreateExportTasks(ctx context.Context, polygon [][]float64, start, end time.Time, folder string) ([]domain.ExportTask, error) {
	body := exportRequest{
		Polygon:   polygon,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Folder:    folder,
	}
	var resp exportResponse
	if err := c.do(ctx, http.MethodPost, "/v1/exports", body, &resp); err != nil {
		return nil, fmt.Errorf("creating export tasks: %w", err)
	}

	tasks := make([]domain.ExportTask, 0, len(resp.Tasks))
	for _, t := range resp.Tasks {
		date, err := time.Parse("2006-01-02", t.Date)
		if err != nil {
			return nil, fmt.Errorf("provider returned bad date %q: %w", t.Date, err)
		}
		tasks = append(tasks, domain.ExportTask{
			JobID:           t.JobID,
			Date:            date,
			Filename:        t.Filename,
			CloudPercentage: t.CloudPercentage,
		})
	}
	return tasks, nil
}

// JobStatus status terkini satu export job
func (c *Client) JobStatus(ctx context.Context, jobID string) (domain.JobStatus, error) {
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/v1/exports/"+jobID, nil, &resp); err != nil {
		return "", fmt.Errorf("fetching job %s status: %w", jobID, err)
	}
	switch status := domain.JobStatus(resp.State); status {
	case domain.JobPending, domain.JobCompleted, domain.JobFailed, domain.JobCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("provider returned unknown job state %q", resp.State)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, string(payload))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
