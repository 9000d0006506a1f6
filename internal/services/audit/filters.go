package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/tpaops/claimsgo/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// BatchQuery carries the raw, free-form batch listing filters
type BatchQuery struct {
	From        string
	To          string
	Reference   string
	RequestIP   string
	HasFailures string
	CompanyID   string
	Page        int
	PerPage     int
}

// DownloadQuery carries the raw document-download listing filters
type DownloadQuery struct {
	From           string
	To             string
	ClaimReference string
	IP             string
	Channel        string
	CompanyID      string
	Page           int
	PerPage        int
}

func normalizeBatchFilter(q BatchQuery, callerScope []uint) repository.BatchFilter {
	f := repository.BatchFilter{
		From:      parseDateStart(q.From),
		To:        parseDateEnd(q.To),
		Reference: strings.TrimSpace(q.Reference),
		RequestIP: strings.TrimSpace(q.RequestIP),
	}
	f.HasFailures = parseBool(q.HasFailures)
	f.CompanyIDs, f.None = intersectScope(parseIDList(q.CompanyID), callerScope)
	return f
}

func normalizeDownloadFilter(q DownloadQuery, callerScope []uint) repository.AccessLogFilter {
	f := repository.AccessLogFilter{
		From:           parseDateStart(q.From),
		To:             parseDateEnd(q.To),
		ClaimReference: strings.TrimSpace(q.ClaimReference),
		IP:             strings.TrimSpace(q.IP),
		Channel:        strings.TrimSpace(q.Channel),
	}
	f.CompanyIDs, f.None = intersectScope(parseIDList(q.CompanyID), callerScope)
	return f
}

// intersectScope merges the requested company filter with the caller's
// allowed scope. Disjoint non-empty sets force an explicit empty result.
func intersectScope(requested, scope []uint) (ids []uint, none bool) {
	switch {
	case len(requested) == 0:
		return scope, false
	case len(scope) == 0:
		return requested, false
	}
	allowed := make(map[uint]struct{}, len(scope))
	for _, id := range scope {
		allowed[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := allowed[id]; ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, true
	}
	return ids, false
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func parseDateStart(value string) *time.Time {
	return parseDate(value, false)
}

// parseDateEnd makes a bare "to" date inclusive through end of day
func parseDateEnd(value string) *time.Time {
	return parseDate(value, true)
}

func parseDate(value string, endOfDay bool) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	t = t.UTC()
	return &t
}

func parseBool(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		v := true
		return &v
	case "0", "false", "no":
		v := false
		return &v
	}
	return nil
}

func parseIDList(value string) []uint {
	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if id, err := strconv.ParseUint(part, 10, 32); err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	return ids
}
