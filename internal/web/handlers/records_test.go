package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tkaraca/facegate/internal/database"
	"github.com/tkaraca/facegate/internal/database/mock"
)

func TestRecordsList(t *testing.T) {
	log := mock.NewAttendanceLog()
	log.Records = []database.AttendanceRecord{
		{
			ID:          "a1",
			StudentID:   "s1",
			StudentName: "Ada Lovelace",
			ClassName:   "5-A",
			Timestamp:   time.Date(2026, 3, 2, 8, 15, 0, 0, time.UTC),
			Status:      "present",
			Confidence:  0.97,
		},
	}
	handler := NewRecordsHandler(log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/records?school_id=school-a", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Records []recordResponse `json:"records"`
		Count   int              `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Records[0].StudentName != "Ada Lovelace" {
		t.Errorf("unexpected record: %+v", resp.Records[0])
	}
	if resp.Records[0].Timestamp != "2026-03-02T08:15:00Z" {
		t.Errorf("timestamp = %s", resp.Records[0].Timestamp)
	}
}

func TestRecordsListRequiresSchool(t *testing.T) {
	handler := NewRecordsHandler(mock.NewAttendanceLog())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/records", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecordsListStoreFailure(t *testing.T) {
	log := mock.NewAttendanceLog()
	log.ListError = errors.New("connection reset")
	handler := NewRecordsHandler(log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/records?school_id=school-a", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestStats(t *testing.T) {
	log := mock.NewAttendanceLog()
	log.StatsResult = &database.SchoolStats{
		TotalStudents: 120,
		TotalClasses:  6,
		TodayCount:    87,
		Weekly: []database.DailyStat{
			{Name: "Monday", Attendance: 110, Absence: 10, Total: 120},
		},
	}
	handler := NewRecordsHandler(log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance/stats?school_id=school-a", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalStudents != 120 || resp.TodayCount != 87 {
		t.Errorf("unexpected stats: %+v", resp)
	}
	if len(resp.Weekly) != 1 || resp.Weekly[0].Attendance != 110 {
		t.Errorf("unexpected weekly series: %+v", resp.Weekly)
	}
}
