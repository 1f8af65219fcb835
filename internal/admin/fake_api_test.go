// ABOUTME: In-memory fake of the /admin API shared by the admin store tests
// ABOUTME: Records requests so tests can assert on paths, queries and bodies

package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/2389/bookdesk/internal/credstore"
	"github.com/2389/bookdesk/internal/schedule"
	"github.com/2389/bookdesk/internal/transport"
)

type recorded struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

type fakeAdmin struct {
	mu        sync.Mutex
	services  []Service
	employees []Employee
	bookings  []Booking
	hours     []schedule.BusinessHour
	business  Business
	nextID    int64
	requests  []recorded
}

func newFakeAdmin() *fakeAdmin {
	desc := "Outside and inside"
	return &fakeAdmin{
		services: []Service{
			{ID: 1, Name: "Full wash", Description: &desc, Price: 25, DurationMinutes: 45, IsActive: true},
			{ID: 2, Name: "Wax", Price: 15, DurationMinutes: 30, IsActive: false},
		},
		employees: []Employee{
			{ID: 10, Name: "Ann", Phone: "+1555", PhotoURL: ptr("https://cdn.example/ann.png"), IsActive: true, ServiceIDs: []int64{1}},
		},
		bookings: []Booking{
			{ID: 100, Status: StatusPending, EmployeeID: ptr(int64(10)), ClientName: "Bob"},
			{ID: 101, Status: StatusConfirmed, ClientName: "Eve"},
		},
		hours: []schedule.BusinessHour{
			{ID: ptr(int64(1)), DayOfWeek: 2, OpenTime: ptr("10:00:00"), CloseTime: ptr("19:00:00")},
		},
		business: Business{ID: 1, Name: "Shop", BusinessType: CarWash, Address: "Main St 1", Phones: []string{"+1555"}},
		nextID:   1000,
	}
}

func ptr[T any](v T) *T { return &v }

func (f *fakeAdmin) record(r *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	return body
}

func (f *fakeAdmin) lastRequest() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeAdmin) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func (f *fakeAdmin) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/services", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		writeJSON(w, http.StatusOK, f.services)
	})
	mux.HandleFunc("POST /admin/services", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		body := f.record(r)
		if body["name"] == "Duplicate" {
			detail(w, http.StatusBadRequest, "Service with this name already exists")
			return
		}
		f.nextID++
		svc := Service{ID: f.nextID, Name: body["name"].(string), Price: body["price"].(float64),
			DurationMinutes: int(body["duration_minutes"].(float64)), IsActive: body["is_active"].(bool)}
		f.services = append(f.services, svc)
		writeJSON(w, http.StatusCreated, svc)
	})
	mux.HandleFunc("PATCH /admin/services/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		body := f.record(r)
		for i := range f.services {
			if f.services[i].ID != pathID(r) {
				continue
			}
			if v, ok := body["is_active"].(bool); ok {
				f.services[i].IsActive = v
			}
			if v, ok := body["name"].(string); ok {
				f.services[i].Name = v
			}
			writeJSON(w, http.StatusOK, f.services[i])
			return
		}
		detail(w, http.StatusNotFound, "Service not found")
	})
	mux.HandleFunc("DELETE /admin/services/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		for i := range f.services {
			if f.services[i].ID == pathID(r) {
				f.services = append(f.services[:i], f.services[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		detail(w, http.StatusNotFound, "Service not found")
	})

	mux.HandleFunc("GET /admin/employees", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		writeJSON(w, http.StatusOK, f.employees)
	})
	mux.HandleFunc("POST /admin/employees", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		body := f.record(r)
		f.nextID++
		emp := Employee{ID: f.nextID, Name: body["name"].(string), Phone: body["phone"].(string), IsActive: true}
		f.employees = append(f.employees, emp)
		writeJSON(w, http.StatusCreated, emp)
	})
	mux.HandleFunc("PATCH /admin/employees/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		body := f.record(r)
		for i := range f.employees {
			if f.employees[i].ID != pathID(r) {
				continue
			}
			if v, ok := body["name"].(string); ok {
				f.employees[i].Name = v
			}
			if v, ok := body["photo_url"]; ok {
				if photo, isString := v.(string); isString {
					f.employees[i].PhotoURL = &photo
				} else {
					f.employees[i].PhotoURL = nil
				}
			}
			writeJSON(w, http.StatusOK, f.employees[i])
			return
		}
		detail(w, http.StatusNotFound, "Employee not found")
	})
	mux.HandleFunc("PATCH /admin/employees/{id}/toggle-active", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		for i := range f.employees {
			if f.employees[i].ID == pathID(r) {
				f.employees[i].IsActive = !f.employees[i].IsActive
				writeJSON(w, http.StatusOK, f.employees[i])
				return
			}
		}
		detail(w, http.StatusNotFound, "Employee not found")
	})

	mux.HandleFunc("GET /admin/bookings", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		status := r.URL.Query().Get("status")
		out := []Booking{}
		for _, b := range f.bookings {
			if status != "" && string(b.Status) != status {
				continue
			}
			out = append(out, b)
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("PATCH /admin/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		body := f.record(r)
		for i := range f.bookings {
			if f.bookings[i].ID != pathID(r) {
				continue
			}
			if f.bookings[i].Status == StatusCompleted {
				detail(w, http.StatusBadRequest, "Completed bookings cannot change status")
				return
			}
			f.bookings[i].Status = BookingStatus(body["status"].(string))
			writeJSON(w, http.StatusOK, f.bookings[i])
			return
		}
		detail(w, http.StatusNotFound, "Booking not found")
	})

	mux.HandleFunc("GET /admin/business-hours", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		writeJSON(w, http.StatusOK, f.hours)
	})
	mux.HandleFunc("PUT /admin/business-hours", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var in HoursUpdate
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path})
		f.hours = in.Hours
		writeJSON(w, http.StatusOK, f.hours)
	})

	mux.HandleFunc("GET /admin/business/profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.record(r)
		writeJSON(w, http.StatusOK, f.business)
	})
	mux.HandleFunc("PUT /admin/business/profile", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var in BusinessUpdate
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.requests = append(f.requests, recorded{Method: r.Method, Path: r.URL.Path})
		f.business.Name = in.Name
		f.business.BusinessType = in.BusinessType
		f.business.Address = in.Address
		f.business.Phones = in.Phones
		f.business.Description = in.Description
		writeJSON(w, http.StatusOK, f.business)
	})

	return mux
}

func newTestAPI(t *testing.T, f *fakeAdmin) *transport.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	creds := credstore.NewMemory("")
	creds.Set(credstore.Access, "T1")
	api := transport.New(srv.URL, creds, transport.Options{})
	t.Cleanup(api.Close)
	return api
}
