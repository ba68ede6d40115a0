package models

import "sort"

// StringSet is an unordered collection of unique strings.
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

func (s StringSet) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

// Union folds other into s and returns s.
func (s StringSet) Union(other StringSet) StringSet {
	for v := range other {
		s[v] = struct{}{}
	}
	return s
}

// Sorted returns the members in ascending order.
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// TaskState labels where a PDF task is in its lifecycle.
type TaskState string

const (
	StatePending          TaskState = "pending"
	StateDownloading      TaskState = "downloading"
	StateDownloadFailed   TaskState = "download_failed"
	StateDownloaded       TaskState = "downloaded"
	StateExtracting       TaskState = "extracting"
	StateExtracted        TaskState = "extracted"
	StateDeletingArtifact TaskState = "deleting_artifact"
	StateDone             TaskState = "done"
	StateFaulted          TaskState = "faulted"
)

// TaskResult is one worker's contribution for a single PDF URL.
type TaskResult struct {
	Filename string
	Domains  StringSet
	State    TaskState
}

// Report maps each processed PDF's filename to the domains discovered in it.
type Report map[string]StringSet

// Merge folds a task result into the report, unioning domain sets when two
// tasks resolve to the same filename.
func (r Report) Merge(res TaskResult) {
	if res.Domains == nil {
		res.Domains = NewStringSet()
	}
	if existing, ok := r[res.Filename]; ok {
		existing.Union(res.Domains)
		return
	}
	r[res.Filename] = res.Domains
}

// Filenames returns the report keys in ascending order.
func (r Report) Filenames() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
