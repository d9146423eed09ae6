// Package lineage resolves a flat audit log of source/target table pairs
// into a deduplicated graph of upstream/downstream tables and
// human-readable notebook/job attributions. Two memoization caches bound
// redundant remote lookups: within one resolution pass no job or
// notebook is fetched twice.
package lineage

import "context"

// Row is one raw audit record asserting a directed read/write
// relationship between two tables. Fields may be absent or null;
// EntityMetadata is either a JSON-encoded string or an already
// structured map.
type Row struct {
	SourceTable    string
	TargetTable    string
	EntityMetadata any
	EventTime      string
}

// NotebookRef attributes a lineage edge to a notebook running inside a
// job. When the notebook path could not be matched against the job's
// task list, Path and Name carry the synthetic "notebook_id:<id>" form
// and TaskKey is empty.
type NotebookRef struct {
	NotebookID string `json:"notebook_id"`
	Path       string `json:"notebook_path"`
	Name       string `json:"notebook_name"`
	JobID      string `json:"job_id"`
	JobName    string `json:"job_name"`
	TaskKey    string `json:"task_key,omitempty"`
}

// Resolved reports whether the notebook was matched to a real workspace
// path rather than the synthetic fallback.
func (r NotebookRef) Resolved() bool {
	return len(r.Path) > 0 && r.Path[0] == '/'
}

// sortKey orders descriptors deterministically by display name, then id.
func (r NotebookRef) sortKey() string {
	return r.Name + "\x00" + r.NotebookID
}

// SkippedRow records a row whose entity metadata could not be parsed.
// The row's table edge still counts; only the attribution is dropped.
type SkippedRow struct {
	Index  int
	Reason string
}

// Graph is the resolved lineage for one queried table. Table sets
// exclude the queried table itself. Derived per request, never
// persisted.
type Graph struct {
	UpstreamTables   []string      `json:"upstream_tables"`
	DownstreamTables []string      `json:"downstream_tables"`
	NotebooksReading []NotebookRef `json:"notebooks_reading"`
	NotebooksWriting []NotebookRef `json:"notebooks_writing"`
	Skipped          []SkippedRow  `json:"-"`
}

// Empty reports whether the graph carries no edges or attributions.
func (g Graph) Empty() bool {
	return len(g.UpstreamTables) == 0 && len(g.DownstreamTables) == 0 &&
		len(g.NotebooksReading) == 0 && len(g.NotebooksWriting) == 0
}

// JobTask is one task inside a job definition that runs a notebook.
type JobTask struct {
	TaskKey      string
	NotebookPath string
}

// Job is the catalog metadata service's view of a job.
type Job struct {
	Name  string
	Tasks []JobTask
}

// ObjectStatus describes a workspace object, of which only the numeric
// id is needed here.
type ObjectStatus struct {
	ObjectID int64
}

// MetadataService is the remote catalog metadata service consumed by the
// cache. Only the cache component talks to it.
type MetadataService interface {
	GetJob(ctx context.Context, jobID string) (Job, error)
	GetNotebookStatus(ctx context.Context, path string) (ObjectStatus, error)
}
