package lineage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// JobEntry is the cached view of one job. Err records the lookup failure
// for placeholder entries so a failing id is fetched once per pass.
type JobEntry struct {
	Name  string
	Tasks []JobTask
	Err   string
}

type notebookEntry struct {
	id string
	ok bool
}

// Cache memoizes job and notebook lookups against the catalog metadata
// service for the lifetime of the process or until Clear. It bounds the
// worst case to one remote call per distinct job id plus one per
// distinct notebook path, independent of lineage row count.
//
// A single mutex guards both maps. In-flight population is deduplicated
// with singleflight so concurrent first-time lookups of the same key
// issue exactly one remote call and never observe a half-written entry.
type Cache struct {
	svc    MetadataService
	logger *slog.Logger

	mu        sync.Mutex
	jobs      map[string]*JobEntry
	notebooks map[string]notebookEntry
	group     singleflight.Group
}

// NewCache creates an empty cache over the given metadata service.
func NewCache(svc MetadataService, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Cache{
		svc:       svc,
		logger:    logger,
		jobs:      make(map[string]*JobEntry),
		notebooks: make(map[string]notebookEntry),
	}
}

// Job returns the cached entry for the job id, fetching it on first use.
// Lookup failures are cached as placeholder entries with a fallback name
// and the error recorded; a populated entry is never overwritten.
func (c *Cache) Job(ctx context.Context, jobID string) *JobEntry {
	c.mu.Lock()
	if e, ok := c.jobs[jobID]; ok {
		c.mu.Unlock()
		return e
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("job:"+jobID, func() (any, error) {
		entry := c.fetchJob(ctx, jobID)
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.jobs[jobID]; ok {
			return existing, nil
		}
		c.jobs[jobID] = entry
		return entry, nil
	})
	return v.(*JobEntry)
}

func (c *Cache) fetchJob(ctx context.Context, jobID string) *JobEntry {
	job, err := c.svc.GetJob(ctx, jobID)
	if err != nil {
		c.logger.Debug("job lookup failed, caching placeholder", "job_id", jobID, "error", err)
		return &JobEntry{Name: fallbackJobName(jobID), Err: err.Error()}
	}
	entry := &JobEntry{Name: job.Name}
	if entry.Name == "" {
		entry.Name = fallbackJobName(jobID)
	}
	for _, t := range job.Tasks {
		if t.NotebookPath == "" {
			continue
		}
		entry.Tasks = append(entry.Tasks, t)
	}
	return entry
}

// NotebookID returns the workspace object id for a notebook path,
// fetching it on first use. The second return is false when the path
// could not be resolved; the failure itself is memoized.
func (c *Cache) NotebookID(ctx context.Context, path string) (string, bool) {
	c.mu.Lock()
	if e, ok := c.notebooks[path]; ok {
		c.mu.Unlock()
		return e.id, e.ok
	}
	c.mu.Unlock()

	v, _, _ := c.group.Do("notebook:"+path, func() (any, error) {
		entry := c.fetchNotebook(ctx, path)
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.notebooks[path]; ok {
			return existing, nil
		}
		c.notebooks[path] = entry
		return entry, nil
	})
	e := v.(notebookEntry)
	return e.id, e.ok
}

func (c *Cache) fetchNotebook(ctx context.Context, path string) notebookEntry {
	status, err := c.svc.GetNotebookStatus(ctx, path)
	if err != nil {
		c.logger.Debug("notebook lookup failed, caching as unresolved", "path", path, "error", err)
		return notebookEntry{}
	}
	return notebookEntry{id: strconv.FormatInt(status.ObjectID, 10), ok: true}
}

// Clear resets both maps. Callers wanting fresh metadata call this
// between logically distinct sessions; there is no TTL or eviction.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobs = make(map[string]*JobEntry)
	c.notebooks = make(map[string]notebookEntry)
}

// Len returns the number of cached job and notebook entries.
func (c *Cache) Len() (jobs, notebooks int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.jobs), len(c.notebooks)
}

func fallbackJobName(jobID string) string {
	return fmt.Sprintf("Job %s", jobID)
}
