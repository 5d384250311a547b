package orchestrators

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/mail"
	"strconv"
	"strings"

	domain "studio/internal/domain/member"
)

// ImportMembersInput carries the CSV stream and import options.
type ImportMembersInput struct {
	Reader     io.Reader
	DryRun     bool
	UpdateMode bool
}

// ImportMembersResult holds aggregate counts and per-row errors from an import run.
type ImportMembersResult struct {
	Total   int
	Created int
	Updated int
	Skipped int
	Errors  []ImportMembersRowError
	DryRun  bool
	Unknown []string
}

// ImportMembersRowError describes a validation or processing error for a single CSV row.
type ImportMembersRowError struct {
	Row     int
	Message string
}

// ImportMembersDeps holds external dependencies for the import orchestrator.
type ImportMembersDeps struct {
	MemberStore MemberStore
	GenerateID  func() string
}

var importColumns = map[string]bool{"NAME": true, "EMAIL": true, "PHONE": true, "SESSIONS": true, "STATUS": true}

// ExecuteImportMembers parses a CSV stream and creates or updates member records.
// SESSIONS sets the opening balance of new members only; balances of existing
// members change through top-ups and attendance, never through import.
// PRE: Reader contains a CSV with a header row including NAME and EMAIL
// POST: Aggregate counts and per-row errors are returned
// INVARIANT: When DryRun=true no writes occur; existing member IDs are preserved on update
func ExecuteImportMembers(ctx context.Context, input ImportMembersInput, deps ImportMembersDeps) (ImportMembersResult, error) {
	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportMembersResult{}, invalid(err)
	}

	colIdx := make(map[string]int, len(header))
	var unknown []string
	for i, h := range header {
		col := strings.ToUpper(strings.TrimSpace(h))
		colIdx[col] = i
		if !importColumns[col] {
			unknown = append(unknown, h)
		}
	}
	for _, required := range []string{"NAME", "EMAIL"} {
		if _, ok := colIdx[required]; !ok {
			return ImportMembersResult{}, invalid(errors.New("CSV missing required column: " + required))
		}
	}

	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := ImportMembersResult{DryRun: input.DryRun, Unknown: unknown}
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Total++

		addr, err := mail.ParseAddress(getCol(row, "EMAIL"))
		if err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "invalid email: " + getCol(row, "EMAIL")})
			continue
		}
		sessions := 0
		if raw := getCol(row, "SESSIONS"); raw != "" {
			if sessions, err = strconv.Atoi(raw); err != nil || sessions < 0 {
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "sessions must be a non-negative integer"})
				continue
			}
		}
		status := strings.ToLower(getCol(row, "STATUS"))
		if status != domain.StatusArchived {
			status = domain.StatusActive
		}

		m := domain.Member{
			Name:              getCol(row, "NAME"),
			Email:             strings.ToLower(addr.Address),
			Phone:             getCol(row, "PHONE"),
			RemainingSessions: sessions,
			Status:            status,
		}

		existing, lookupErr := deps.MemberStore.GetByEmail(ctx, m.Email)
		exists := lookupErr == nil
		if lookupErr != nil && !errors.Is(lookupErr, sql.ErrNoRows) {
			return result, lookupErr
		}
		if exists {
			if !input.UpdateMode {
				result.Skipped++
				continue
			}
			m.ID = existing.ID
			m.RemainingSessions = existing.RemainingSessions
		} else {
			m.ID = deps.GenerateID()
		}

		if err := m.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		if !input.DryRun {
			if err := deps.MemberStore.Save(ctx, m); err != nil {
				slog.Error("members_import_save_failed", "row", rowNum, "email", m.Email, "err", err)
				result.Errors = append(result.Errors, ImportMembersRowError{Row: rowNum, Message: "save failed (see server log)"})
				continue
			}
		}
		if exists {
			result.Updated++
		} else {
			result.Created++
		}
	}

	slog.Info("members_import",
		"dry_run", input.DryRun,
		"update_mode", input.UpdateMode,
		"total", result.Total,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}
