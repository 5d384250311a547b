package projections

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"studio/internal/adapters/storage/attendance"
	"studio/internal/adapters/storage/member"
	"studio/internal/application/listutil"
	domainMember "studio/internal/domain/member"
)

// ErrMemberNotFound is returned when the queried member does not exist.
var ErrMemberNotFound = errors.New("member not found")

// MemberListSortColumns are the columns a member list may be sorted by.
var MemberListSortColumns = []string{"name", "email", "remaining", "status"}

// MemberListQuery carries list parameters parsed from the request.
type MemberListQuery struct {
	listutil.ListParams
}

// MemberListDeps holds dependencies for QueryMemberList.
type MemberListDeps struct {
	MemberStore MemberListStore
}

// MemberListResult carries one page of members.
type MemberListResult struct {
	Members []domainMember.Member
	Page    listutil.PageInfo
}

// QueryMemberList returns one page of members matching the search and status filter.
// PRE: query parsed by listutil.ParseListParams
// POST: Page reflects the total matching count
func QueryMemberList(ctx context.Context, query MemberListQuery, deps MemberListDeps) (MemberListResult, error) {
	filter := member.ListFilter{
		Status: query.Filters["status"],
		Search: query.Search,
		Sort:   query.Sort,
		Dir:    query.Dir,
	}
	total, err := deps.MemberStore.Count(ctx, filter)
	if err != nil {
		return MemberListResult{}, err
	}
	page := listutil.NewPageInfo(query.Page, query.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return MemberListResult{}, err
	}
	return MemberListResult{Members: members, Page: page}, nil
}

// AttendanceView is one attended session in a member's history.
type AttendanceView struct {
	SessionID   string    `json:"sessionId"`
	TrainerID   string    `json:"trainerId"`
	ClassDate   string    `json:"date"`
	CheckInTime time.Time `json:"checkedInAt"`
}

// MemberAttendanceQuery carries query parameters.
type MemberAttendanceQuery struct {
	MemberID string
	listutil.PageParams
}

// MemberAttendanceDeps holds dependencies for QueryMemberAttendance.
type MemberAttendanceDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
}

// MemberAttendanceResult carries a page of history, newest first.
type MemberAttendanceResult struct {
	Member  domainMember.Member `json:"-"`
	Records []AttendanceView    `json:"records"`
	Page    int                 `json:"page"`
	HasMore bool                `json:"hasMore"`
}

// QueryMemberAttendance returns a member's attendance history, newest first.
// PRE: MemberID is non-empty
// POST: At most PerPage records; HasMore reports a following page
func QueryMemberAttendance(ctx context.Context, query MemberAttendanceQuery, deps MemberAttendanceDeps) (MemberAttendanceResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, query.MemberID)
	if errors.Is(err, sql.ErrNoRows) {
		return MemberAttendanceResult{}, ErrMemberNotFound
	} else if err != nil {
		return MemberAttendanceResult{}, err
	}

	page, perPage := query.Page, query.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = listutil.DefaultPerPage
	}
	// one extra row tells whether another page exists
	rows, err := deps.AttendanceStore.ListByMemberID(ctx, m.ID, attendance.ListFilter{Limit: perPage + 1, Offset: (page - 1) * perPage})
	if err != nil {
		return MemberAttendanceResult{}, err
	}
	result := MemberAttendanceResult{Member: m, Page: page, Records: make([]AttendanceView, 0, len(rows))}
	if len(rows) > perPage {
		result.HasMore = true
		rows = rows[:perPage]
	}
	for _, a := range rows {
		result.Records = append(result.Records, AttendanceView{SessionID: a.SessionID, TrainerID: a.TrainerID, ClassDate: a.ClassDate, CheckInTime: a.CheckInTime})
	}
	return result, nil
}
