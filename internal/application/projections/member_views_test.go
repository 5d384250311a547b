package projections

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"studio/internal/application/listutil"
	domainAttendance "studio/internal/domain/attendance"
	domainMember "studio/internal/domain/member"
)

// TestQueryMemberList_Pages filters by status and computes page info.
func TestQueryMemberList_Pages(t *testing.T) {
	store := stubMembers{}
	for i := range 12 {
		status := domainMember.StatusActive
		if i%4 == 0 {
			status = domainMember.StatusArchived
		}
		id := fmt.Sprintf("m%02d", i)
		store[id] = domainMember.Member{ID: id, Name: id, Status: status}
	}
	q := MemberListQuery{ListParams: listutil.ListParams{
		PageParams:   listutil.PageParams{Page: 2, PerPage: 5},
		FilterParams: listutil.FilterParams{Filters: map[string]string{"status": domainMember.StatusActive}},
	}}
	res, err := QueryMemberList(context.Background(), q, MemberListDeps{MemberStore: store})
	if err != nil {
		t.Fatal(err)
	}
	if res.Page.Total != 9 || res.Page.TotalPages != 2 || res.Page.Page != 2 {
		t.Errorf("page = %+v", res.Page)
	}
	if len(res.Members) != 4 {
		t.Errorf("members on page 2 = %d, want 4", len(res.Members))
	}
}

// TestQueryMemberAttendance_HasMore pages through history.
func TestQueryMemberAttendance_HasMore(t *testing.T) {
	var history stubAttendance
	for i := range 3 {
		history = append(history, domainAttendance.Attendance{
			ID: fmt.Sprint(i), MemberID: "m1", SessionID: fmt.Sprint("s", i), TrainerID: "t1",
			CheckInTime: testNow.Add(-time.Duration(i) * 24 * time.Hour), ClassDate: "2026-10-21",
		})
	}
	deps := MemberAttendanceDeps{MemberStore: sessionsDeps(nil).MemberStore, AttendanceStore: history}

	res, err := QueryMemberAttendance(context.Background(), MemberAttendanceQuery{MemberID: "m1", PageParams: listutil.PageParams{Page: 1, PerPage: 2}}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Records) != 2 || !res.HasMore || res.Member.Name != "Sam" {
		t.Errorf("page 1 = %+v", res)
	}
	res, err = QueryMemberAttendance(context.Background(), MemberAttendanceQuery{MemberID: "m1", PageParams: listutil.PageParams{Page: 2, PerPage: 2}}, deps)
	if err != nil || len(res.Records) != 1 || res.HasMore {
		t.Errorf("page 2 = %+v, %v", res, err)
	}

	if _, err := QueryMemberAttendance(context.Background(), MemberAttendanceQuery{MemberID: "ghost"}, deps); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("missing member err = %v", err)
	}
}
