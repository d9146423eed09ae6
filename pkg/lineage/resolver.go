package lineage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
)

// Resolver folds raw lineage rows into a Graph using the shared cache.
// Resolution is best-effort: malformed metadata degrades to an
// un-attributed edge and is reported in Graph.Skipped, never as an
// error.
type Resolver struct {
	cache  *Cache
	logger *slog.Logger
}

// NewResolver creates a resolver over the given cache.
func NewResolver(cache *Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{cache: cache, logger: logger}
}

// attribution is one lineage edge carrying a notebook/job pair, kept
// with its direction so a notebook that both reads and writes keeps
// both descriptors.
type attribution struct {
	notebookID string
	jobID      string
	source     string
	target     string
}

// Resolve converts raw rows into the lineage graph for targetTable.
// Rows with identical source and target contribute no edge; rows with a
// missing source or target are ignored for edge construction but do not
// abort the pass. Empty input produces an empty graph with zero remote
// calls. All four output collections are sorted for deterministic
// output.
func (r *Resolver) Resolve(ctx context.Context, rows []Row, targetTable string) Graph {
	upstream := make(map[string]struct{})
	downstream := make(map[string]struct{})
	jobIDs := make(map[string]struct{})
	seen := make(map[attribution]struct{})
	var attrs []attribution
	var skipped []SkippedRow

	for i, row := range rows {
		notebookID, jobID, err := parseEntityMetadata(row.EntityMetadata)
		if err != nil {
			skipped = append(skipped, SkippedRow{Index: i, Reason: err.Error()})
		}

		switch {
		case row.SourceTable == targetTable && row.TargetTable != "" && row.TargetTable != targetTable:
			downstream[row.TargetTable] = struct{}{}
		case row.TargetTable == targetTable && row.SourceTable != "" && row.SourceTable != targetTable:
			upstream[row.SourceTable] = struct{}{}
		}

		if notebookID == "" || jobID == "" {
			continue
		}
		a := attribution{notebookID: notebookID, jobID: jobID, source: row.SourceTable, target: row.TargetTable}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		attrs = append(attrs, a)
		jobIDs[jobID] = struct{}{}
	}

	// Populate the job cache up front, one lookup per distinct id.
	for _, id := range sortedKeys(jobIDs) {
		r.cache.Job(ctx, id)
	}

	reading := make(map[string]NotebookRef)
	writing := make(map[string]NotebookRef)
	for _, a := range attrs {
		ref := r.resolveNotebook(ctx, a.notebookID, a.jobID)
		switch {
		case a.source == targetTable:
			reading[a.notebookID] = ref
		case a.target == targetTable:
			writing[a.notebookID] = ref
		}
	}

	if len(skipped) > 0 {
		r.logger.Debug("lineage rows skipped for attribution", "count", len(skipped))
	}

	return Graph{
		UpstreamTables:   sortedKeys(upstream),
		DownstreamTables: sortedKeys(downstream),
		NotebooksReading: sortedRefs(reading),
		NotebooksWriting: sortedRefs(writing),
		Skipped:          skipped,
	}
}

// resolveNotebook builds the descriptor for one notebook/job pair from
// cached job data, falling back to a synthetic descriptor keyed by the
// notebook id when no task path resolves to it.
func (r *Resolver) resolveNotebook(ctx context.Context, notebookID, jobID string) NotebookRef {
	synthetic := "notebook_id:" + notebookID
	ref := NotebookRef{
		NotebookID: notebookID,
		Path:       synthetic,
		Name:       synthetic,
		JobID:      jobID,
		JobName:    fallbackJobName(jobID),
	}

	job := r.cache.Job(ctx, jobID)
	ref.JobName = job.Name
	for _, task := range job.Tasks {
		id, ok := r.cache.NotebookID(ctx, task.NotebookPath)
		if ok && id == notebookID {
			ref.Path = task.NotebookPath
			ref.Name = path.Base(task.NotebookPath)
			ref.TaskKey = task.TaskKey
			break
		}
	}
	return ref
}

// entityMetadata is the subset of the audit log's entity payload used
// for attribution.
type entityMetadata struct {
	NotebookID flexID `json:"notebook_id"`
	JobInfo    *struct {
		JobID flexID `json:"job_id"`
	} `json:"job_info"`
}

// flexID accepts a JSON string or number, normalizing either to its
// textual form. The audit log is not consistent about which one it
// emits.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// parseEntityMetadata extracts the notebook and job ids from a raw
// metadata value. Absent metadata is not an error; a value that exists
// but cannot be interpreted is.
func parseEntityMetadata(raw any) (notebookID, jobID string, err error) {
	if raw == nil {
		return "", "", nil
	}

	var buf []byte
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", "", nil
		}
		buf = []byte(v)
	case []byte:
		if len(v) == 0 {
			return "", "", nil
		}
		buf = v
	case map[string]any:
		// Already structured; round-trip through JSON for one decode path.
		buf, err = json.Marshal(v)
		if err != nil {
			return "", "", fmt.Errorf("entity metadata not encodable: %w", err)
		}
	default:
		return "", "", fmt.Errorf("entity metadata has unexpected type %T", raw)
	}

	var meta entityMetadata
	if err := json.Unmarshal(buf, &meta); err != nil {
		return "", "", fmt.Errorf("entity metadata not valid JSON: %w", err)
	}

	notebookID = string(meta.NotebookID)
	if meta.JobInfo != nil {
		jobID = string(meta.JobInfo.JobID)
	}
	return notebookID, jobID, nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRefs(m map[string]NotebookRef) []NotebookRef {
	refs := make([]NotebookRef, 0, len(m))
	for _, ref := range m {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].sortKey() < refs[j].sortKey() })
	return refs
}
