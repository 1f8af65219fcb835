// Package admin provides the stores a business operator works with.
//
// # Overview
//
// Each store caches one resource of the operator's business and talks to the
// /admin API through the authenticated transport. All of them report failures as
// transport.Outcome values, never as Go errors.
//
// # Endpoints
//
// Services:
//
//   - GET /admin/services - List services
//   - POST /admin/services - Create a service
//   - PATCH /admin/services/:id - Update a service (also used to toggle is_active)
//   - DELETE /admin/services/:id - Delete a service
//
// Employees:
//
//   - GET /admin/employees - List employees
//   - POST /admin/employees - Create an employee
//   - PATCH /admin/employees/:id - Update an employee
//   - PATCH /admin/employees/:id/toggle-active - Flip is_active
//   - DELETE /admin/employees/:id - Delete an employee
//
// Bookings:
//
//   - GET /admin/bookings?status=&employee_id= - List bookings
//   - PATCH /admin/bookings/:id - Change a booking's status
//
// Business:
//
//   - GET /admin/business-hours, PUT /admin/business-hours - Weekly opening hours
//   - GET /admin/business/profile, PUT /admin/business/profile - Business profile
//
// # Toggles
//
// ToggleActive looks the record up in the local cache, never in a fresh fetch, and
// fails with "<Entity> not found" when it is not there.
package admin
