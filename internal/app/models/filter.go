package models

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Filter narrows a task collection. Zero values mean the predicate is not
// applied.
type Filter struct {
	Status   Status   `json:"status,omitempty" form:"status"`
	Priority Priority `json:"priority,omitempty" form:"priority"`
	Assignee string   `json:"assignee,omitempty" form:"assignee"`
	Search   string   `json:"searchTerm,omitempty" form:"search"`
}

func (f Filter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return NewValidationError("status", "status must be one of todo, in_progress, done")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return NewValidationError("priority", "priority must be one of low, medium, high")
	}
	return nil
}

// Matches applies status, priority, assignee and the case-insensitive
// search over title, description and tags.
func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Assignee != "" && t.Assignee != f.Assignee {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Apply returns the matching tasks ordered by UpdatedAt, newest first. Ties
// keep their input order. The input slice is not modified.
func (f Filter) Apply(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	SortByUpdatedDesc(out)
	return out
}

func SortByUpdatedDesc(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
}

type ListQuery struct {
	Filter
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// Normalize fills defaults and clamps the limit to MaxPageLimit.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// CacheKey identifies the query for list caching. Call on a normalized query.
// Values are query-escaped, so no field can spill into another.
func (q ListQuery) CacheKey() string {
	return url.Values{
		"status":   {string(q.Status)},
		"priority": {string(q.Priority)},
		"assignee": {q.Assignee},
		"search":   {strings.ToLower(q.Search)},
		"page":     {strconv.Itoa(q.Page)},
		"limit":    {strconv.Itoa(q.Limit)},
	}.Encode()
}

type TaskPage struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// Paginate slices an already filtered and sorted collection.
func Paginate(tasks []Task, q ListQuery) TaskPage {
	page := TaskPage{Tasks: []Task{}, Total: len(tasks), Page: q.Page, Limit: q.Limit}
	start := q.Offset()
	if start >= len(tasks) {
		return page
	}
	end := start + q.Limit
	if end > len(tasks) {
		end = len(tasks)
	}
	page.Tasks = append(page.Tasks, tasks[start:end]...)
	return page
}
