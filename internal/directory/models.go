// Package directory resolves vehicles, owners and service centers from the
// fleet registry tables. All data here is read-only to the conversation core.
package directory

import (
	"context"
	"errors"
)

// Vehicle is a registered vehicle and its owning user.
type Vehicle struct {
	ID     string
	UserID string
	Brand  string
}

// User is a vehicle owner reachable over SMS.
type User struct {
	ID    string
	Phone string
}

// ServiceCenter is a bookable service location owned by a brand/company.
type ServiceCenter struct {
	ID          string
	Name        string
	CompanyName string
	Location    string
}

var (
	// ErrVehicleNotFound is returned when no vehicle matches the identifier.
	ErrVehicleNotFound = errors.New("directory: vehicle not found")
	// ErrUserNotFound is returned when no user matches the identifier.
	ErrUserNotFound = errors.New("directory: user not found")
	// ErrCenterNotFound is returned when no service center matches the identifier.
	ErrCenterNotFound = errors.New("directory: service center not found")
)

// VehicleDirectory resolves vehicle identifiers to owners and brands.
type VehicleDirectory interface {
	FindVehicle(ctx context.Context, vehicleID string) (*Vehicle, error)
}

// UserDirectory resolves user identifiers to contact details.
type UserDirectory interface {
	FindUser(ctx context.Context, userID string) (*User, error)
}

// CenterDirectory resolves service centers by brand or identifier.
type CenterDirectory interface {
	FindCentersByBrandPrefix(ctx context.Context, brand string, limit int) ([]ServiceCenter, error)
	FindCenterByID(ctx context.Context, centerID string) (*ServiceCenter, error)
}
