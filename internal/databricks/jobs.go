package databricks

import (
	"context"
	"net/http"
	"net/url"

	"github.com/leapstack-labs/lakegate/pkg/lineage"
)

const (
	jobsGetPath            = "/api/2.2/jobs/get"
	workspaceGetStatusPath = "/api/2.0/workspace/get-status"
)

var _ lineage.MetadataService = (*Client)(nil)

type jobResponseBody struct {
	Settings *struct {
		Name  string `json:"name"`
		Tasks []struct {
			TaskKey      string `json:"task_key"`
			NotebookTask *struct {
				NotebookPath string `json:"notebook_path"`
			} `json:"notebook_task"`
		} `json:"tasks"`
	} `json:"settings"`
}

// GetJob fetches a job definition, reduced to its name and notebook
// tasks.
func (c *Client) GetJob(ctx context.Context, jobID string) (lineage.Job, error) {
	query := url.Values{"job_id": {jobID}}
	var resp jobResponseBody
	if err := c.do(ctx, http.MethodGet, jobsGetPath, query, nil, &resp); err != nil {
		return lineage.Job{}, err
	}

	var job lineage.Job
	if resp.Settings == nil {
		return job, nil
	}
	job.Name = resp.Settings.Name
	for _, task := range resp.Settings.Tasks {
		if task.NotebookTask == nil {
			continue
		}
		job.Tasks = append(job.Tasks, lineage.JobTask{
			TaskKey:      task.TaskKey,
			NotebookPath: task.NotebookTask.NotebookPath,
		})
	}
	return job, nil
}

// GetNotebookStatus fetches the workspace object status for a notebook
// path.
func (c *Client) GetNotebookStatus(ctx context.Context, path string) (lineage.ObjectStatus, error) {
	query := url.Values{"path": {path}}
	var resp struct {
		ObjectID int64 `json:"object_id"`
	}
	if err := c.do(ctx, http.MethodGet, workspaceGetStatusPath, query, nil, &resp); err != nil {
		return lineage.ObjectStatus{}, err
	}
	return lineage.ObjectStatus{ObjectID: resp.ObjectID}, nil
}
